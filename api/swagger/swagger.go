package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TeeBox Waitlist API",
        "description": "Waitlist admission and scoring service for the TeeBox beta",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Waitlist", "description": "Public waitlist submission and status"},
        {"name": "Authentication", "description": "Staff authentication"},
        {"name": "Admin", "description": "Staff waitlist operations"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/waitlist": {
            "post": {
                "tags": ["Waitlist"],
                "summary": "Submit a waitlist application",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitWaitlistRequest"}}
                ],
                "responses": {
                    "201": {"description": "Application accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already applied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/waitlist/status": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "Look up application status",
                "parameters": [
                    {"name": "email", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Application status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not waitlisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/waitlist/position": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "Project the queue position for a pending application",
                "parameters": [
                    {"name": "email", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Queue position", "schema": {"$ref": "#/definitions/QueuePosition"}},
                    "404": {"description": "Not waitlisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No longer in the queue", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff user",
                "responses": {
                    "200": {"description": "Issued tokens", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "Rotated tokens", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Expired or revoked token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/scoring/config": {
            "get": {
                "tags": ["Admin"],
                "summary": "Inspect the active scoring configuration",
                "responses": {
                    "200": {"description": "Active configuration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/scoring/config/refresh": {
            "post": {
                "tags": ["Admin"],
                "summary": "Force a configuration refetch and rescore pending applications",
                "responses": {
                    "202": {"description": "Refresh accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/waitlist/distribution": {
            "get": {
                "tags": ["Admin"],
                "summary": "Score distribution across pending applications",
                "responses": {
                    "200": {"description": "Distribution", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/waitlist/{email}/status": {
            "patch": {
                "tags": ["Admin"],
                "summary": "Transition an application's status",
                "parameters": [
                    {"name": "email", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Status updated"},
                    "404": {"description": "Not waitlisted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/waitlist/exports": {
            "post": {
                "tags": ["Admin"],
                "summary": "Export the pending queue",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Signed download URL", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/metrics/system": {
            "get": {
                "tags": ["Admin"],
                "summary": "Aggregated runtime metrics snapshot",
                "responses": {
                    "200": {"description": "Metrics snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitWaitlistRequest": {
            "type": "object",
            "required": ["email", "display_name", "role", "spend_bracket", "buy_frequency", "share_frequency", "city_region", "terms_accepted"],
            "properties": {
                "email": {"type": "string"},
                "display_name": {"type": "string"},
                "role": {"type": "string", "enum": ["golfer", "fitter_builder", "content_creator", "coach_instructor", "industry_professional"]},
                "share_channels": {"type": "array", "items": {"type": "string"}},
                "learn_channels": {"type": "array", "items": {"type": "string"}},
                "uses": {"type": "array", "items": {"type": "string"}},
                "spend_bracket": {"type": "string", "enum": ["under_500", "500_1000", "1000_2500", "2500_5000", "5000_plus", "prefer_not_say"]},
                "buy_frequency": {"type": "string", "enum": ["never", "rarely", "few_times_year", "monthly", "weekly"]},
                "share_frequency": {"type": "string", "enum": ["never", "rarely", "few_times_year", "monthly", "weekly"]},
                "city_region": {"type": "string"},
                "invite_code": {"type": "string"},
                "terms_accepted": {"type": "boolean"}
            }
        },
        "QueuePosition": {
            "type": "object",
            "properties": {
                "position": {"type": "integer"},
                "total_waiting": {"type": "integer"},
                "ahead_of_you": {"type": "integer"},
                "behind_you": {"type": "integer"},
                "referral_count": {"type": "integer"},
                "referral_boost": {"type": "integer"},
                "wave_capacity": {"type": "integer"},
                "wave_filled_today": {"type": "integer"},
                "estimated_days": {"type": "integer"},
                "estimated_wait_for": {"type": "string"}
            }
        },
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
