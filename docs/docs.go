// Package docs holds the OpenAPI document served at /swagger. Keep it in step
// with the handler annotations in package api.
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
        "/bus-location/update": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bus-location"],
                "summary": "Report a bus position",
                "parameters": [
                    {
                        "description": "Bus position",
                        "name": "event",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/domain.LocationEvent"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.locationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/bus-location/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["bus-location"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.healthResponse"}}
                }
            }
        },
        "/buses/{busId}/passengers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["passengers"],
                "summary": "List the passengers booked on a bus",
                "parameters": [
                    {"type": "string", "description": "Bus id", "name": "busId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.passengerResponse"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/reservations": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["passengers"],
                "summary": "Register a reservation and its passengers",
                "parameters": [
                    {
                        "description": "Reservation",
                        "name": "reservation",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/api.createReservationRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.reservationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.LocationEvent": {
            "type": "object",
            "required": ["bus_id", "latitude", "longitude"],
            "properties": {
                "bus_id": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "timestamp": {"type": "string"}
            }
        },
        "api.locationResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "busId": {"type": "string"},
                "notificationsSent": {"type": "integer"}
            }
        },
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "api.healthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "service": {"type": "string"}
            }
        },
        "api.passengerRequest": {
            "type": "object",
            "required": ["passenger_id", "phone"],
            "properties": {
                "passenger_id": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "pickup_latitude": {"type": "number"},
                "pickup_longitude": {"type": "number"},
                "pickup_address": {"type": "string"}
            }
        },
        "api.createReservationRequest": {
            "type": "object",
            "required": ["bus_id", "pnr_id", "passengers"],
            "properties": {
                "bus_id": {"type": "string"},
                "pnr_id": {"type": "string"},
                "passengers": {"type": "array", "items": {"$ref": "#/definitions/api.passengerRequest"}}
            }
        },
        "api.passengerResponse": {
            "type": "object",
            "properties": {
                "passenger_id": {"type": "string"},
                "pnr_id": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "pickup_latitude": {"type": "number"},
                "pickup_longitude": {"type": "number"},
                "pickup_address": {"type": "string"},
                "notified": {"type": "boolean"},
                "notification_sent_at": {"type": "string"},
                "call_made_at": {"type": "string"}
            }
        },
        "api.reservationResponse": {
            "type": "object",
            "properties": {
                "bus_id": {"type": "string"},
                "pnr_id": {"type": "string"},
                "passengers": {"type": "array", "items": {"$ref": "#/definitions/api.passengerResponse"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Bus Reminder System API",
	Description:      "Alerts passengers by SMS and voice call when their bus is about to reach the pickup point.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
