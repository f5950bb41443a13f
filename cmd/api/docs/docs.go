// Package docs holds the Swagger 2.0 document for the HTTP API. It mirrors
// the godoc annotations on the handlers; TestDocCoversRoutes fails when a
// route is missing from it.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {
			"name": "API Support"
		},
		"license": {
			"name": "Apache 2.0",
			"url": "http://www.apache.org/licenses/LICENSE-2.0.html"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/": {
			"get": {
				"description": "Reports liveness and pings the Redis cache when one is configured",
				"produces": [
					"application/json"
				],
				"tags": [
					"health"
				],
				"summary": "Service health",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.HealthResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/dto.HealthResponse"
						}
					}
				}
			}
		},
		"/api/ask": {
			"post": {
				"description": "Answers a free-form prompt using retrieved passages as context",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"search"
				],
				"summary": "Ask a question",
				"parameters": [
					{
						"description": "Prompt",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.AskRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.AskResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/quiz/generate": {
			"post": {
				"description": "Generates multiple-choice questions grounded on a document or a topic. n defaults to 10 and is clamped to 5..30.",
				"consumes": [
					"application/json"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"quiz"
				],
				"summary": "Generate a quiz",
				"parameters": [
					{
						"description": "Topic and/or document id",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.GenerateQuizRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.QuizResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ValidationErrorResponse"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/quiz/history": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"quiz"
				],
				"summary": "List recent quizzes",
				"parameters": [
					{
						"type": "integer",
						"description": "Number of quizzes, 0..100, 0 means 20",
						"name": "limit",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.HistoryResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ValidationErrorResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/quiz/ping": {
			"get": {
				"description": "Sends a short prompt through the model fallback chain",
				"produces": [
					"application/json"
				],
				"tags": [
					"quiz"
				],
				"summary": "Check the language model",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.PingResponse"
						}
					},
					"502": {
						"description": "Bad Gateway",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/search": {
			"get": {
				"description": "Hybrid lexical and vector search over ingested chunks",
				"produces": [
					"application/json"
				],
				"tags": [
					"search"
				],
				"summary": "Search indexed passages",
				"parameters": [
					{
						"type": "string",
						"description": "Query text",
						"name": "q",
						"in": "query",
						"required": true
					},
					{
						"type": "integer",
						"description": "Number of hits, 0..50, 0 means the configured default",
						"name": "size",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.SearchResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ValidationErrorResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/upload": {
			"post": {
				"description": "Extracts text from a PDF or text file, chunks it and indexes the chunks",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"documents"
				],
				"summary": "Upload a document",
				"parameters": [
					{
						"type": "file",
						"description": "PDF or text file",
						"name": "file",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "Title, defaults to the filename",
						"name": "title",
						"in": "formData"
					},
					{
						"type": "string",
						"description": "Document id, generated when empty",
						"name": "docId",
						"in": "formData"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/dto.UploadResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/middleware.ValidationErrorResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"dto.AskRequest": {
			"type": "object",
			"properties": {
				"prompt": {
					"type": "string"
				}
			}
		},
		"dto.AskResponse": {
			"type": "object",
			"properties": {
				"model": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"reply": {
					"type": "string"
				},
				"sources": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.SearchHit"
					}
				}
			}
		},
		"dto.GenerateQuizRequest": {
			"type": "object",
			"properties": {
				"docId": {
					"type": "string"
				},
				"n": {
					"type": "integer"
				},
				"topic": {
					"type": "string"
				}
			}
		},
		"dto.HealthResponse": {
			"type": "object",
			"properties": {
				"cache": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"service": {
					"type": "string"
				}
			}
		},
		"dto.HistoryResponse": {
			"type": "object",
			"properties": {
				"ok": {
					"type": "boolean"
				},
				"quizzes": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.QuizSummary"
					}
				}
			}
		},
		"dto.PingResponse": {
			"type": "object",
			"properties": {
				"model": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"text": {
					"type": "string"
				}
			}
		},
		"dto.QuizQuestionResponse": {
			"type": "object",
			"properties": {
				"answer": {
					"type": "string"
				},
				"explanation": {
					"type": "string"
				},
				"options": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"question": {
					"type": "string"
				}
			}
		},
		"dto.QuizResponse": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"createdAt": {
					"type": "string"
				},
				"docId": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"model": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"quiz": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.QuizQuestionResponse"
					}
				},
				"topic": {
					"type": "string"
				}
			}
		},
		"dto.QuizSummary": {
			"type": "object",
			"properties": {
				"count": {
					"type": "integer"
				},
				"createdAt": {
					"type": "string"
				},
				"docId": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"model": {
					"type": "string"
				},
				"topic": {
					"type": "string"
				}
			}
		},
		"dto.SearchHit": {
			"type": "object",
			"properties": {
				"docId": {
					"type": "string"
				},
				"id": {
					"type": "string"
				},
				"pageOrdinal": {
					"type": "integer"
				},
				"score": {
					"type": "number"
				},
				"text": {
					"type": "string"
				},
				"title": {
					"type": "string"
				}
			}
		},
		"dto.SearchResponse": {
			"type": "object",
			"properties": {
				"hits": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/dto.SearchHit"
					}
				},
				"ok": {
					"type": "boolean"
				},
				"query": {
					"type": "string"
				}
			}
		},
		"dto.UploadResponse": {
			"type": "object",
			"properties": {
				"chunksIndexed": {
					"type": "integer"
				},
				"docId": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"textLen": {
					"type": "integer"
				},
				"title": {
					"type": "string"
				}
			}
		},
		"middleware.ErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"status": {
					"type": "integer"
				}
			}
		},
		"middleware.ValidationErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"errors": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/validation.FieldError"
					}
				},
				"message": {
					"type": "string"
				},
				"ok": {
					"type": "boolean"
				},
				"status": {
					"type": "integer"
				}
			}
		},
		"validation.FieldError": {
			"type": "object",
			"properties": {
				"field": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Quizgen API",
	Description:      "Uploads study material, searches it and generates multiple-choice quizzes from it.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
