package firestore

var DocID = docID
