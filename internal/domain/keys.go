package domain

type CtxKey string

const (
	KeyRequestID  CtxKey = "RequestID"
	KeyAttachment CtxKey = "Attachment"
)
