package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Vitrine Moderation API",
        "description": "Submission moderation and catalog publication pipeline",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication and session management"},
        {"name": "Submissions", "description": "Product and testimonial submission review"},
        {"name": "Catalog", "description": "Published catalog listings and curation"},
        {"name": "Diagnostics", "description": "Store health and self-repair"},
        {"name": "Exports", "description": "Decision history exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/products": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List product submissions",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit a product for review",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProductSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/products/unpromoted": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List approved submissions awaiting catalog publication",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/products/{id}/approve": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Approve a product submission and publish it",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PromotionResult"}},
                    "404": {"description": "Not found"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/submissions/products/{id}/reject": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Reject a product submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Rejection reason required"},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/submissions/products/{id}/promote": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Retry catalog publication for an approved submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PromotionResult"}},
                    "409": {"description": "Not in a promotable state"}
                }
            }
        },
        "/submissions/testimonials": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List testimonial submissions",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "approved", "rejected"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Submissions"],
                "summary": "Submit a testimonial for review",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTestimonialSubmissionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/testimonials/{id}/approve": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Approve a testimonial and publish it atomically",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PromotionResult"}},
                    "409": {"description": "Already reviewed"}
                }
            }
        },
        "/submissions/testimonials/{id}/reject": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Reject a testimonial submission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Rejection reason required"}
                }
            }
        },
        "/catalog/products": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List active catalog products",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/products/all": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List all catalog products including inactive",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/catalog/products/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get catalog product",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Catalog"],
                "summary": "Curate display controls of a published product",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCatalogProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Catalog"],
                "summary": "Remove a product from the catalog",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/catalog/testimonials": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List active catalog testimonials",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/diagnostics/store": {
            "get": {
                "tags": ["Diagnostics"],
                "summary": "Probe managed tables and columns",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/DiagnosticReport"}}
                }
            }
        },
        "/diagnostics/store/repair": {
            "post": {
                "tags": ["Diagnostics"],
                "summary": "Apply additive schema repairs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RepairReport"}},
                    "503": {"description": "One or more repair steps failed", "schema": {"$ref": "#/definitions/RepairReport"}}
                }
            }
        },
        "/diagnostics/system": {
            "get": {
                "tags": ["Diagnostics"],
                "summary": "Runtime and moderation counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a decision-history export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export by signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Token expired or invalid"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateProductSubmissionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "number"},
                "category": {"type": "string"},
                "platform": {"type": "string"},
                "image_url": {"type": "string"},
                "image_url_alt": {"type": "string"},
                "commission_rate": {"type": "number"},
                "sales_page_url": {"type": "string"},
                "benefits": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["name", "description", "price", "category", "platform", "sales_page_url"]
        },
        "CreateTestimonialSubmissionRequest": {
            "type": "object",
            "properties": {
                "image_url": {"type": "string"},
                "caption": {"type": "string"}
            },
            "required": ["image_url"]
        },
        "ReviewRequest": {
            "type": "object",
            "properties": {
                "comments": {"type": "string"}
            }
        },
        "PromotionResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "promoted": {"type": "boolean"},
                "catalog_id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "UpdateCatalogProductRequest": {
            "type": "object",
            "properties": {
                "active": {"type": "boolean"},
                "featured": {"type": "boolean"},
                "order_index": {"type": "integer"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["decisions", "unpromoted", "catalog"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "kind": {"type": "string", "enum": ["product", "testimonial"]},
                "from": {"type": "string", "format": "date-time"},
                "to": {"type": "string", "format": "date-time"}
            },
            "required": ["type", "format"]
        },
        "DiagnosticReport": {
            "type": "object",
            "properties": {
                "generated_at": {"type": "string"},
                "healthy": {"type": "boolean"},
                "tables": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TableDiagnostic"}
                }
            }
        },
        "TableDiagnostic": {
            "type": "object",
            "properties": {
                "table": {"type": "string"},
                "exists": {"type": "boolean"},
                "row_count": {"type": "integer"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "last_error": {"type": "string"}
            }
        },
        "RepairReport": {
            "type": "object",
            "properties": {
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"},
                "applied": {"type": "integer"},
                "skipped": {"type": "integer"},
                "failed": {"type": "integer"},
                "steps": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RepairStep"}
                }
            }
        },
        "RepairStep": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "outcome": {"type": "string", "enum": ["applied", "skipped", "failed"]},
                "detail": {"type": "string"}
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
