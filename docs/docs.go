// Package docs holds the OpenAPI description served under /swagger.
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
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Overall balance",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            }
        },
        "/trips": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["trips"],
                "summary": "List the caller's trips",
                "parameters": [
                    {"type": "boolean", "description": "List archived trips instead of active ones", "name": "archived", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            }
        },
        "/trips/{id}/expenses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "List expenses",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/docs.ExpenseResponse"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Record an expense",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/docs.ExpenseResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}},
                    "409": {"description": "Trip archived", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            }
        },
        "/trips/{id}/expenses/{expenseId}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["expenses"],
                "summary": "Update an expense",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Expense ID", "name": "expenseId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/docs.ExpenseResponse"}},
                    "409": {"description": "Expense locked or trip archived", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["expenses"],
                "summary": "Delete an expense",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Expense ID", "name": "expenseId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Expense locked or trip archived", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            }
        },
        "/trips/{id}/settlements": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settlements"],
                "summary": "Record a settlement",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            }
        },
        "/trips/{id}/balances": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["balances"],
                "summary": "Trip balances",
                "parameters": [
                    {"type": "string", "description": "Trip ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/docs.BalanceResponse"}}},
                    "500": {"description": "Internal inconsistency", "schema": {"$ref": "#/definitions/docs.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "docs.ErrorResponse": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "VALIDATION_ERROR"},
                "code": {"type": "string", "example": "INVALID_AMOUNT"},
                "message": {"type": "string", "example": "invalid amount"},
                "details": {"type": "string", "example": "amount must be greater than zero"}
            }
        },
        "docs.SplitResponse": {
            "type": "object",
            "properties": {
                "memberId": {"type": "string"},
                "amount": {"type": "string", "example": "33.34"},
                "percentage": {"type": "string", "example": "33.34"}
            }
        },
        "docs.ExpenseResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "tripId": {"type": "string"},
                "description": {"type": "string", "example": "Dinner at Ramiro"},
                "category": {"type": "string", "example": "food"},
                "amount": {"type": "string", "example": "100.00"},
                "currency": {"type": "string", "example": "PHP"},
                "paidBy": {"type": "string"},
                "paidByName": {"type": "string", "example": "Ana"},
                "splitType": {"type": "string", "enum": ["Equal", "Custom", "PaidFor", "Percentage"]},
                "splits": {"type": "array", "items": {"$ref": "#/definitions/docs.SplitResponse"}},
                "hasSettlements": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "docs.BalanceResponse": {
            "type": "object",
            "properties": {
                "memberId": {"type": "string"},
                "displayName": {"type": "string", "example": "Ana"},
                "balance": {"type": "string", "example": "-33.33"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "NomadCrew Ledger API",
	Description:      "Shared-expense ledger and settlement engine for NomadCrew trips.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
