// Package docs holds the OpenAPI description served at /swagger. Regenerate with
// `swag init -g cmd/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a user",
                "parameters": [{"description": "username, email, password", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.signUpInput"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"description": "username, password", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Totals, essential split, per-category breakdown and narrative for a period.",
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Spending summary",
                "parameters": [
                    {"enum": ["day", "week", "month", "year", "specific", "all"], "type": "string", "description": "Period", "name": "period", "in": "query"},
                    {"type": "string", "example": "2024-03-15", "description": "Day for period=specific", "name": "specific_date", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Category allow-list", "name": "categories", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.summaryResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/expenses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List expenses",
                "parameters": [
                    {"enum": ["day", "week", "month", "year", "specific", "all"], "type": "string", "description": "Period", "name": "period", "in": "query"},
                    {"type": "string", "description": "Day for period=specific", "name": "specific_date", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Category allow-list", "name": "categories", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "period, count, expenses", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Create an expense",
                "parameters": [{"description": "expense; amount and date are strings", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.expenseForm"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/v1/expenses/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Get an expense",
                "parameters": [{"type": "integer", "description": "Expense id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Expense"}},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["expenses"],
                "summary": "Replace an expense",
                "parameters": [
                    {"type": "integer", "description": "Expense id", "name": "id", "in": "path", "required": true},
                    {"description": "all fields; an empty date keeps the stored one", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.expenseForm"}}
                ],
                "responses": {"204": {"description": "No Content"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["expenses"],
                "summary": "Delete an expense",
                "parameters": [{"type": "integer", "description": "Expense id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/ws/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Upgrades to a websocket and pushes {\"type\":\"summary\",\"data\":...} every interval.",
                "tags": ["reports"],
                "summary": "Live summary feed",
                "parameters": [
                    {"type": "string", "description": "Period", "name": "period", "in": "query"},
                    {"type": "string", "description": "Push interval, e.g. 5s (max 60s)", "name": "interval", "in": "query"},
                    {"type": "integer", "description": "Push interval in milliseconds", "name": "interval_ms", "in": "query"}
                ],
                "responses": {"101": {"description": "Switching Protocols"}}
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"password": {"type": "string"}, "username": {"type": "string"}}
        },
        "handlers.signUpInput": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "username": {"type": "string", "maxLength": 20, "minLength": 4}
            }
        },
        "handlers.expenseForm": {
            "type": "object",
            "required": ["amount"],
            "properties": {
                "amount": {"type": "string", "example": "12.50"},
                "associated_person": {"type": "string", "maxLength": 256},
                "category": {"type": "string", "maxLength": 100},
                "date": {"type": "string", "example": "2024-03-15T13:05"},
                "description": {"type": "string", "maxLength": 256},
                "expense_type": {"type": "string", "enum": ["essential", "non-essential"]},
                "honest_reason": {"type": "string", "maxLength": 256}
            }
        },
        "handlers.summaryResponse": {
            "type": "object",
            "properties": {
                "chart": {"$ref": "#/definitions/service.ChartData"},
                "period": {"$ref": "#/definitions/service.Period"},
                "summary": {"$ref": "#/definitions/service.Summary"}
            }
        },
        "models.Expense": {
            "type": "object",
            "properties": {
                "amount": {"type": "number"},
                "associated_person": {"type": "string"},
                "category": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "expense_type": {"type": "string"},
                "honest_reason": {"type": "string"},
                "id": {"type": "integer"},
                "user_id": {"type": "integer"}
            }
        },
        "service.CategoryAmount": {
            "type": "object",
            "properties": {"amount": {"type": "number"}, "category": {"type": "string"}, "expense_type": {"type": "string"}}
        },
        "service.ChartData": {
            "type": "object",
            "properties": {
                "essential": {"type": "array", "items": {"type": "number"}},
                "labels": {"type": "array", "items": {"type": "string"}},
                "non_essential": {"type": "array", "items": {"type": "number"}}
            }
        },
        "service.Period": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "end": {"type": "string"},
                "fallback": {"type": "boolean"},
                "label": {"type": "string"},
                "name": {"type": "string"},
                "start": {"type": "string"}
            }
        },
        "service.Summary": {
            "type": "object",
            "properties": {
                "analysis": {"type": "string"},
                "breakdown": {"type": "array", "items": {"$ref": "#/definitions/service.CategoryAmount"}},
                "count": {"type": "integer"},
                "essential_percent": {"type": "number"},
                "essential_total": {"type": "number"},
                "label": {"type": "string"},
                "non_essential_percent": {"type": "number"},
                "non_essential_total": {"type": "number"},
                "period": {"type": "string"},
                "total": {"type": "number"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Expense Tracker API",
	Description:      "Personal expense tracking: periods, summaries, CSV import and export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
