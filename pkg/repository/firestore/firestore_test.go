package firestore_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
	"github.com/secmon-lab/noticekit/pkg/repository/firestore"
)

func TestDocID(t *testing.T) {
	testCases := []struct {
		name   string
		userID types.UserID
		want   string
	}{
		{name: "plain id", userID: "42", want: "42"},
		{name: "slash is escaped", userID: "x/../42", want: "x%2F..%2F42"},
		{name: "dot", userID: ".", want: "%."},
		{name: "dot dot", userID: "..", want: "%.."},
		{name: "reserved underscore form", userID: "__name__", want: "%__name__"},
		{name: "percent is escaped", userID: "%..", want: "%25.."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Value(t, firestore.DocID(tc.userID)).Equal(tc.want)
		})
	}

	t.Run("distinct users never share a document", func(t *testing.T) {
		ids := []types.UserID{"42", "x/../42", "..", "%..", "%2E%2E", "a/b", "a%2Fb", "__x__", "%__x__"}
		seen := map[string]types.UserID{}
		for _, id := range ids {
			doc := firestore.DocID(id)
			prev, dup := seen[doc]
			gt.Bool(t, dup).False()
			if dup {
				t.Logf("%q and %q both map to %q", prev, id, doc)
			}
			seen[doc] = id
		}
	})
}
