package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth  = RouteApiV1 + "/auth"
	RouteLogin = RouteAuth + "/login"

	RouteUsers         = RouteApiV1 + "/users"
	RouteUser          = RouteUsers + "/:user_id"
	RouteUserPublicKey = RouteUser + "/public-key"

	RouteKeys = RouteApiV1 + "/keys"

	RouteFiles        = RouteApiV1 + "/files"
	RouteSentFiles    = RouteFiles + "/sent"
	RouteFileDownload = RouteFiles + "/:file_id/download"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
