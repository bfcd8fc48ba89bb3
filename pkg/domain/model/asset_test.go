package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
)

func TestAssetQueue(t *testing.T) {
	var q model.AssetQueue
	gt.Bool(t, q.Has(model.DismissNoticeScript)).False()
	gt.Bool(t, q.Enqueue(model.DismissNoticeScript)).True()
	gt.Bool(t, q.Enqueue(model.DismissNoticeScript)).False()
	gt.Bool(t, q.Enqueue("other")).True()
	gt.Value(t, q.Handles()).Equal([]string{model.DismissNoticeScript, "other"})
}
