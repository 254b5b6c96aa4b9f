package dispatch

// PhotoReply selects between a threaded and a plain photo reply.
// A present replyTo is the only thing that makes the reply threaded.
func PhotoReply(chat Chat, url string, replyTo ReplyRef) OutboundAction {
	action := OutboundAction{
		Chat:     chat,
		Kind:     ActionPhotoReply,
		PhotoURL: url,
	}

	if _, ok := replyTo.Get(); ok {
		action.ReplyTo = replyTo
		action.AllowSendingWithoutReply = false
	}

	return action
}
