package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "IceTime API",
        "description": "Aggregated ice rink schedules for northern New Jersey and beyond",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "IceTimes", "description": "Aggregated schedule listing"},
        {"name": "Rinks", "description": "Rink directory"},
        {"name": "Cron", "description": "Ingestion job triggers"}
    ],
    "paths": {
        "/ice-times": {
            "get": {
                "tags": ["IceTimes"],
                "summary": "List active ice times",
                "parameters": [
                    {"name": "clinic", "in": "query", "type": "boolean"},
                    {"name": "openSkate", "in": "query", "type": "boolean"},
                    {"name": "stickTime", "in": "query", "type": "boolean"},
                    {"name": "openHockey", "in": "query", "type": "boolean"},
                    {"name": "substituteRequest", "in": "query", "type": "boolean"},
                    {"name": "learnToSkate", "in": "query", "type": "boolean"},
                    {"name": "youthClinic", "in": "query", "type": "boolean"},
                    {"name": "adultClinic", "in": "query", "type": "boolean"},
                    {"name": "adultSkate", "in": "query", "type": "boolean"},
                    {"name": "other", "in": "query", "type": "boolean"},
                    {"name": "dateFilter", "in": "query", "type": "string", "enum": ["today", "tomorrow", "thisWeek"]},
                    {"name": "rinkId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/ice-times/export": {
            "get": {
                "tags": ["IceTimes"],
                "summary": "Export the filtered schedule",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "dateFilter", "in": "query", "type": "string", "enum": ["today", "tomorrow", "thisWeek"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/rinks": {
            "get": {
                "tags": ["Rinks"],
                "summary": "List known rinks",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cron": {
            "get": {
                "tags": ["Cron"],
                "summary": "List the registered ingestion jobs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/cron/{jobName}": {
            "post": {
                "tags": ["Cron"],
                "summary": "Run one ingestion job",
                "parameters": [
                    {"name": "jobName", "in": "path", "required": true, "type": "string"},
                    {"name": "async", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Run report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Queued"},
                    "404": {"description": "Unknown job"},
                    "409": {"description": "Job already in flight"}
                }
            }
        }
    },
    "definitions": {
        "IceTimeView": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "rink_name": {"type": "string"},
                "rink_location": {"type": "string"},
                "rink_website": {"type": "string"}
            }
        },
        "Rink": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "location": {"type": "string"},
                "website": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "JobReport": {
            "type": "object",
            "properties": {
                "job_name": {"type": "string"},
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "result": {"type": "object"}
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
