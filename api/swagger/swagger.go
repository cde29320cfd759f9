package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Sweeft Projects API",
        "description": "Storefront backend for academic project write-ups",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Catalog", "description": "Project browsing and filtering"},
        {"name": "Purchases", "description": "Purchase lifecycle and verification"},
        {"name": "Downloads", "description": "Delivery, retry and receipts"},
        {"name": "Admin", "description": "Operator-only endpoints"}
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
                    "503": {"description": "Catalog still loading"}
                }
            }
        },
        "/api/config": {
            "get": {
                "summary": "Client bootstrap configuration",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ConfigResponse"}},
                    "503": {"description": "No gateway key configured"}
                }
            }
        },
        "/projects": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List projects",
                "parameters": [
                    {"name": "school", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "q", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Catalog unavailable"}
                }
            }
        },
        "/projects/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get a project",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown project"}
                }
            }
        },
        "/schools": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List the school and department hierarchy",
                "parameters": [
                    {"name": "school", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/purchases": {
            "post": {
                "tags": ["Purchases"],
                "summary": "Start a purchase attempt",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InitiatePurchaseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Gateway handoff or immediate delivery", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload"},
                    "503": {"description": "Gateway unavailable"}
                }
            }
        },
        "/purchases/{reference}/callback": {
            "post": {
                "tags": ["Purchases"],
                "summary": "Complete a purchase after the in-page gateway callback",
                "parameters": [
                    {"name": "reference", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or settled reference"}
                }
            }
        },
        "/purchases/{reference}/cancel": {
            "post": {
                "tags": ["Purchases"],
                "summary": "Abandon an in-flight purchase attempt",
                "parameters": [
                    {"name": "reference", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Cancelled"}
                }
            }
        },
        "/payments/return": {
            "get": {
                "tags": ["Purchases"],
                "summary": "Gateway return URL",
                "parameters": [
                    {"name": "reference", "in": "query", "type": "string"},
                    {"name": "project", "in": "query", "type": "string"}
                ],
                "responses": {
                    "302": {"description": "Redirect to the storefront with parameters stripped"}
                }
            }
        },
        "/api/verify": {
            "post": {
                "tags": ["Purchases"],
                "summary": "Verify a gateway reference server-side",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entitlements": {
            "get": {
                "tags": ["Purchases"],
                "summary": "List the calling device's owned projects",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/downloads/{projectID}": {
            "post": {
                "tags": ["Downloads"],
                "summary": "Re-deliver an owned project",
                "parameters": [
                    {"name": "projectID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "402": {"description": "Not entitled"}
                }
            }
        },
        "/downloads/retry": {
            "post": {
                "tags": ["Downloads"],
                "summary": "Retry the device's most recent delivery",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "No recent purchase to retry"}
                }
            }
        },
        "/downloads/resolve/{token}": {
            "get": {
                "tags": ["Downloads"],
                "summary": "Resolve a signed download token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "302": {"description": "Redirect to the asset locator"}
                }
            }
        },
        "/downloads/{projectID}/receipt": {
            "get": {
                "tags": ["Downloads"],
                "summary": "Render a PDF receipt",
                "parameters": [
                    {"name": "projectID", "in": "path", "required": true, "type": "string"},
                    {"name": "reference", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF receipt"},
                    "404": {"description": "Unknown purchase"}
                }
            }
        },
        "/admin/catalog/refresh": {
            "post": {
                "tags": ["Admin"],
                "summary": "Force a catalog reload from the source sheet",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Bad admin key"}
                }
            }
        },
        "/admin/ledger/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export a device's purchase audit rows as CSV",
                "parameters": [
                    {"name": "deviceId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV export"},
                    "403": {"description": "Bad admin key"}
                }
            }
        }
    },
    "definitions": {
        "ConfigResponse": {
            "type": "object",
            "properties": {
                "PAYSTACK_PUBLIC_KEY": {"type": "string"}
            }
        },
        "InitiatePurchaseRequest": {
            "type": "object",
            "required": ["projectId", "email"],
            "properties": {
                "projectId": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "VerifyRequest": {
            "type": "object",
            "required": ["reference"],
            "properties": {
                "reference": {"type": "string"}
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
