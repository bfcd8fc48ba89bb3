package usecase

// NoticeTemplate is exported for testing
var NoticeTemplate = noticeTemplate
