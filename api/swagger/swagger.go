package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Elan API",
        "description": "Moderated classified listings: submission, moderation, browsing and export",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Accounts and token lifecycle"},
        {"name": "Listings", "description": "Submission, browsing and owner edits"},
        {"name": "Admin", "description": "Moderation queue and exports"},
        {"name": "Catalog", "description": "Categories, experience levels and cities"}
    ],
    "paths": {
        "/catalog": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Categories, experience levels and cities",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Create an account",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid refresh token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/listings": {
            "get": {
                "tags": ["Listings"],
                "summary": "Browse approved listings",
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Listings"],
                "summary": "Submit a listing for moderation",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ListingPayload"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Too many requests", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/listings/{id}": {
            "get": {
                "tags": ["Listings"],
                "summary": "Listing detail",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Listings"],
                "summary": "Edit a listing",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/ListingPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Listings"],
                "summary": "Delete a listing",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/me/listings": {
            "get": {
                "tags": ["Listings"],
                "summary": "Listings submitted by the caller",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/listings": {
            "get": {
                "tags": ["Admin"],
                "summary": "Moderation queue",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "status", "type": "string", "enum": ["pending", "approved", "rejected", "all"]},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/listings/{id}/approve": {
            "post": {
                "tags": ["Admin"],
                "summary": "Approve a pending listing",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No identity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Signed in without the admin capability", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/listings/{id}/reject": {
            "post": {
                "tags": ["Admin"],
                "summary": "Reject a pending listing",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "No identity", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Signed in without the admin capability", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/listings/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Export listings",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]},
                    {"in": "query", "name": "status", "type": "string", "enum": ["pending", "approved", "rejected", "all"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "full_name": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {"refresh_token": {"type": "string"}}
        },
        "ListingPayload": {
            "type": "object",
            "required": ["title", "description", "category", "city", "contact_email", "contact_phone"],
            "properties": {
                "title": {"type": "string", "minLength": 5, "maxLength": 100},
                "description": {"type": "string", "minLength": 20, "maxLength": 1000},
                "category": {"type": "string"},
                "city": {"type": "string"},
                "experience_level": {"type": "string"},
                "salary": {"type": "string"},
                "contact_email": {"type": "string"},
                "contact_phone": {"type": "string"}
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
                "status": {"type": "integer"},
                "field": {"type": "string"}
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
