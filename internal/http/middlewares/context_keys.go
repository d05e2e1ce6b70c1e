package middlewares

// CtxRequestID is the gin context key for the request id. handlers reads the same key.
const CtxRequestID = "request_id"
