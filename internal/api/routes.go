package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/text2sql-agent/internal/guardrails"
	"github.com/povarna/text2sql-agent/internal/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/text2sql/query").
			To(handler.Query).
			Doc("Answer a natural language question with SQL").
			Metadata(restfulspec.KeyOpenAPITags, []string{"query"}).
			Reads(QueryRequest{}).
			Writes(QueryResponse{}).
			Returns(200, "OK", QueryResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/guardrails/validate").
			To(handler.Validate).
			Doc("Validate a SQL statement against the guardrail engine").
			Metadata(restfulspec.KeyOpenAPITags, []string{"guardrails"}).
			Reads(ValidateRequest{}).
			Writes(guardrails.Report{}).
			Returns(200, "OK", guardrails.Report{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/sessions").
			To(handler.ListSessions).
			Doc("List known session ids").
			Metadata(restfulspec.KeyOpenAPITags, []string{"sessions"}).
			Writes(SessionListResponse{}).
			Returns(200, "OK", SessionListResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/sessions/{id}").
			To(handler.GetSession).
			Doc("Fetch a session with its conversation history").
			Param(ws.PathParameter("id", "session id").DataType("string")).
			Metadata(restfulspec.KeyOpenAPITags, []string{"sessions"}).
			Writes(SessionResponse{}).
			Returns(200, "OK", SessionResponse{}).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.DELETE("/sessions/{id}").
			To(handler.DeleteSession).
			Doc("Delete a session").
			Param(ws.PathParameter("id", "session id").DataType("string")).
			Metadata(restfulspec.KeyOpenAPITags, []string{"sessions"}).
			Returns(204, "No Content", nil).
			Returns(404, "Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
