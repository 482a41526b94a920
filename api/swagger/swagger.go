package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduCenter API",
        "description": "Education center management portal: classes, weekly schedules, enrollments and attendance",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and password management"},
        {"name": "TimeSlots", "description": "Global time-slot catalog"},
        {"name": "Teachers", "description": "Teacher roster, free-busy and weekly grid"},
        {"name": "Rooms", "description": "Room inventory, free-busy and weekly grid"},
        {"name": "Students", "description": "Student records"},
        {"name": "Classes", "description": "Class lifecycle, weekly schedule and derived sessions"},
        {"name": "Sessions", "description": "Materialized class sessions and attendance"},
        {"name": "Enrollments", "description": "Class rosters"},
        {"name": "Payments", "description": "Tuition payments"},
        {"name": "Exports", "description": "Async timetable exports (CSV/PDF)"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user by email and password",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Exchange refresh token for a new token pair",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Token revoked or expired"}
                }
            }
        },
        "/time-slots": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "List active time slots",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Create time slot",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate start time"}
                }
            }
        },
        "/teachers/{id}/free-busy": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Committed weekday/slot intervals of a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/teachers/{id}/grid": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Weekly schedule grid of a teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rooms/{id}/grid": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Weekly schedule grid of a room",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class, derive end date and materialize sessions",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Teacher or room conflict"},
                    "422": {"description": "Unmatched picked slots or invalid schedule"}
                }
            }
        },
        "/classes/{id}/status": {
            "patch": {
                "tags": ["Classes"],
                "summary": "Change class lifecycle status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Illegal transition"}
                }
            }
        },
        "/sessions/{id}/attendance": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Record attendance marks for a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Session cancelled or student not enrolled"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a class",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Duplicate enrollment or class full"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a timetable export",
                "responses": {"202": {"description": "Accepted"}}
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
