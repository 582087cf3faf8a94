// Package docs holds the OpenAPI description served under /swagger.
// Regenerate it from the handler annotations with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Clinic Finance Backend",
            "url": "https://github.com/clinicfin/backend"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/backfill": {
            "get": {
                "description": "Whether the monthly schedule is active and when it fires next, whether a run is in flight, plus the cells refreshed and failed by the last run",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "backfill"
                ],
                "summary": "Backfill status",
                "operationId": "getBackfillStatus",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.BackfillStatusResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "description": "Rebuilds recent months in the background. 202 means accepted, 409 that another run is still in flight.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "backfill"
                ],
                "summary": "Start a backfill run",
                "operationId": "triggerBackfill",
                "parameters": [
                    {
                        "description": "Months and clinics; empty means the configured defaults",
                        "name": "request",
                        "in": "body",
                        "schema": {
                            "$ref": "#/definitions/dto.BackfillRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.BackfillStatusResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/clinics/{clinic_id}/months/{month}/classify": {
            "post": {
                "description": "Upserts every source record of the month into the ledger and returns the rows created or changed",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Classify a clinic month",
                "operationId": "classifyClinicMonth",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Clinic ID",
                        "name": "clinic_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "example": "2024-05",
                        "description": "Month as YYYY-MM",
                        "name": "month",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.ClassifyResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/clinics/{clinic_id}/months/{month}/snapshot": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Get a monthly snapshot",
                "operationId": "getClinicMonthSnapshot",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Clinic ID",
                        "name": "clinic_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "example": "2024-05",
                        "description": "Month as YYYY-MM",
                        "name": "month",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.SnapshotResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "post": {
                "description": "Recomputes the monthly snapshot from the billing sources, then reclassifies the month and recomputes its taxes",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "Refresh a clinic month",
                "operationId": "buildClinicMonthSnapshot",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Clinic ID",
                        "name": "clinic_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "example": "2024-05",
                        "description": "Month as YYYY-MM",
                        "name": "month",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.BuildResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/clinics/{clinic_id}/months/{month}/taxes": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tax"
                ],
                "summary": "Get stored tax figures",
                "operationId": "getClinicMonthTaxes",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Clinic ID",
                        "name": "clinic_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "example": "2024-05",
                        "description": "Month as YYYY-MM",
                        "name": "month",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.TaxFiguresResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            },
            "post": {
                "description": "Service tax, Simples Nacional tax over the trailing twelve months, Fator R and contractor withholding",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tax"
                ],
                "summary": "Compute tax figures",
                "operationId": "computeClinicMonthTaxes",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Clinic ID",
                        "name": "clinic_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "example": "2024-05",
                        "description": "Month as YYYY-MM",
                        "name": "month",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.TaxFiguresResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/clinics/{clinic_id}/months/{month}/transactions": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ledger"
                ],
                "summary": "List ledger rows of a clinic month",
                "operationId": "listClinicMonthTransactions",
                "parameters": [
                    {
                        "type": "string",
                        "format": "uuid",
                        "description": "Clinic ID",
                        "name": "clinic_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "example": "2024-05",
                        "description": "Month as YYYY-MM",
                        "name": "month",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/dto.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/dto.TransactionListResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {
                            "$ref": "#/definitions/dto.Response"
                        }
                    }
                }
            }
        },
        "/api/v1/webhooks/payments": {
            "post": {
                "description": "Verifies the HMAC-SHA256 signature over the raw body, fetches the payment from the provider and reconciles it.\nThe provider retries on 5xx only.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "webhooks"
                ],
                "summary": "Payment provider webhook",
                "operationId": "receivePaymentWebhook",
                "parameters": [
                    {
                        "type": "string",
                        "description": "hex HMAC-SHA256 of the body, optionally prefixed with sha256=",
                        "name": "X-Signature",
                        "in": "header",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.WebhookResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/dto.WebhookResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/dto.WebhookResponse"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.WebhookResponse"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Answers as long as the process serves requests",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Liveness check",
                "operationId": "getHealth",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Pings the database within two seconds",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Readiness check",
                "operationId": "getReady",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.BackfillRequest": {
            "type": "object",
            "properties": {
                "clinic_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "months": {
                    "type": "integer",
                    "maximum": 36,
                    "minimum": 1
                }
            }
        },
        "dto.BackfillResultResponse": {
            "type": "object",
            "properties": {
                "cells": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.CellResponse"
                    }
                },
                "clinics": {
                    "type": "integer"
                },
                "failures": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.CellFailureResponse"
                    }
                },
                "finished_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "interrupted": {
                    "type": "boolean"
                },
                "months": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "planned": {
                    "type": "integer"
                },
                "processed": {
                    "type": "integer"
                },
                "started_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "dto.BackfillStatusResponse": {
            "type": "object",
            "properties": {
                "last": {
                    "$ref": "#/definitions/dto.BackfillResultResponse"
                },
                "next_run": {
                    "type": "string",
                    "format": "date-time"
                },
                "running": {
                    "type": "boolean"
                },
                "scheduled": {
                    "type": "boolean"
                }
            }
        },
        "dto.BuildResponse": {
            "type": "object",
            "properties": {
                "created": {
                    "type": "integer"
                },
                "enumerated": {
                    "type": "integer"
                },
                "snapshot": {
                    "$ref": "#/definitions/dto.SnapshotResponse"
                },
                "taxes": {
                    "$ref": "#/definitions/dto.TaxFiguresResponse"
                },
                "unchanged": {
                    "type": "integer"
                },
                "updated": {
                    "type": "integer"
                }
            }
        },
        "dto.CellFailureResponse": {
            "type": "object",
            "properties": {
                "clinic_id": {
                    "type": "string",
                    "example": "6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
                },
                "error": {
                    "type": "string"
                },
                "month": {
                    "type": "string",
                    "example": "2024-05"
                }
            }
        },
        "dto.CellResponse": {
            "type": "object",
            "properties": {
                "clinic_id": {
                    "type": "string",
                    "example": "6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
                },
                "month": {
                    "type": "string",
                    "example": "2024-05"
                }
            }
        },
        "dto.ClassifyResponse": {
            "type": "object",
            "properties": {
                "clinic_id": {
                    "type": "string",
                    "example": "6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
                },
                "created": {
                    "type": "integer"
                },
                "month": {
                    "type": "string",
                    "example": "2024-05"
                },
                "transactions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.TransactionResponse"
                    }
                },
                "updated": {
                    "type": "integer"
                }
            }
        },
        "dto.ErrorInfo": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                }
            }
        },
        "dto.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {
                    "$ref": "#/definitions/dto.ErrorInfo"
                },
                "success": {
                    "type": "boolean"
                }
            }
        },
        "dto.SnapshotResponse": {
            "type": "object",
            "properties": {
                "clinic_id": {
                    "type": "string",
                    "example": "6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
                },
                "generated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "month": {
                    "type": "string",
                    "example": "2024-05"
                },
                "product_revenue": {
                    "type": "string",
                    "example": "100.00"
                },
                "service_revenue": {
                    "type": "string",
                    "example": "150.00"
                },
                "total_revenue": {
                    "type": "string",
                    "example": "250.00"
                }
            }
        },
        "dto.TaxFiguresResponse": {
            "type": "object",
            "properties": {
                "bracket_index": {
                    "type": "integer"
                },
                "bracket_table": {
                    "type": "string",
                    "example": "annex_iii"
                },
                "clinic_id": {
                    "type": "string",
                    "example": "6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
                },
                "computed_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "effective_rate": {
                    "type": "string",
                    "example": "0.0600"
                },
                "fator_r": {
                    "type": "string",
                    "example": "0.2800"
                },
                "month": {
                    "type": "string",
                    "example": "2024-05"
                },
                "projected_annual_revenue": {
                    "type": "string"
                },
                "service_tax": {
                    "type": "string",
                    "example": "7.50"
                },
                "simplified_tax": {
                    "type": "string",
                    "example": "15.00"
                },
                "trailing_revenue": {
                    "type": "string"
                },
                "withholding": {
                    "type": "string"
                }
            }
        },
        "dto.TransactionListResponse": {
            "type": "object",
            "properties": {
                "clinic_id": {
                    "type": "string",
                    "example": "6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
                },
                "month": {
                    "type": "string",
                    "example": "2024-05"
                },
                "total": {
                    "type": "integer"
                },
                "transactions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.TransactionResponse"
                    }
                }
            }
        },
        "dto.TransactionResponse": {
            "type": "object",
            "properties": {
                "category": {
                    "type": "string",
                    "example": "revenue_service"
                },
                "description": {
                    "type": "string"
                },
                "id": {
                    "type": "string"
                },
                "month": {
                    "type": "string",
                    "example": "2024-05"
                },
                "occurred_on": {
                    "type": "string"
                },
                "origin": {
                    "type": "string",
                    "example": "service"
                },
                "raw_id": {
                    "type": "string",
                    "example": "service:6f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
                },
                "subcategory": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "value": {
                    "type": "string",
                    "example": "150.00"
                }
            }
        },
        "dto.WebhookResponse": {
            "type": "object",
            "properties": {
                "event_id": {
                    "type": "string"
                },
                "payment_status": {
                    "type": "string",
                    "example": "completed"
                },
                "status": {
                    "type": "string",
                    "example": "ok"
                }
            }
        }
    },
    "externalDocs": {
        "description": "OpenAPI",
        "url": "https://swagger.io/resources/open-api/"
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Clinic Finance API",
	Description:      "Financial consolidation for veterinary clinics: ledger classification, monthly snapshots, tax figures,\npayment webhook reconciliation and scheduled backfills.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
