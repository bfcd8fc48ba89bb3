package cloudstorage

var ObjectName = objectName
