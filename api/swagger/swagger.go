package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Recruit API",
        "description": "Recruitment pipeline and day-close approval backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "Recruitment", "description": "Section-multiplexed recruitment entities"},
        {"name": "Grants", "description": "Per-section access grants for team managers"},
        {"name": "DayClose", "description": "Day-close approval workflow"},
        {"name": "Reports", "description": "Asynchronous exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/recruitment": {
            "get": {
                "tags": ["Recruitment"],
                "summary": "Read a recruitment section",
                "parameters": [
                    {"name": "section", "in": "query", "type": "string", "required": true},
                    {"name": "activeOnly", "in": "query", "type": "boolean"},
                    {"name": "candidateId", "in": "query", "type": "string"},
                    {"name": "programId", "in": "query", "type": "string"},
                    {"name": "programCode", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Section rows", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No grant for section"}
                }
            },
            "post": {
                "tags": ["Recruitment"],
                "summary": "Create in a recruitment section",
                "parameters": [
                    {"name": "section", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure"},
                    "403": {"description": "Grant does not allow writes"}
                }
            },
            "put": {
                "tags": ["Recruitment"],
                "summary": "Update in a recruitment section",
                "parameters": [
                    {"name": "section", "in": "query", "type": "string", "required": true},
                    {"name": "id", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Recruitment"],
                "summary": "Delete in a recruitment section",
                "parameters": [
                    {"name": "section", "in": "query", "type": "string", "required": true},
                    {"name": "id", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/recruitment/grants": {
            "get": {
                "tags": ["Grants"],
                "summary": "List a user's section grants",
                "parameters": [
                    {"name": "userId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Grants", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grants"],
                "summary": "Assign or update a section grant",
                "responses": {
                    "200": {"description": "Grant", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Grants"],
                "summary": "Revoke a section grant",
                "parameters": [
                    {"name": "userId", "in": "query", "type": "string", "required": true},
                    {"name": "section", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Revoked"}
                }
            }
        },
        "/dayClose/dayCloseRequest": {
            "post": {
                "tags": ["DayClose"],
                "summary": "Submit a day close request",
                "responses": {
                    "201": {"description": "Pending request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Outside window or routine log missing"},
                    "403": {"description": "Day close paused by escalation"},
                    "409": {"description": "Already pending or resolved"}
                }
            }
        },
        "/dayClose/dayCloseStatus": {
            "get": {
                "tags": ["DayClose"],
                "summary": "Get day close status and form feature flags",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dayClose/pending": {
            "get": {
                "tags": ["DayClose"],
                "summary": "List pending requests for a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Pending requests", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dayClose/requests/{id}/resolve": {
            "post": {
                "tags": ["DayClose"],
                "summary": "Approve or reject a pending request",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Resolved request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Request is not pending"}
                }
            }
        },
        "/reports/exports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an export",
                "responses": {
                    "202": {"description": "Queued job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/exports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Get export status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Job status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Export file"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
