package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CampusHQ API",
        "description": "Multi-tenant campus management backend: scheduling, classes, auth, queries, push",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Authentication", "description": "Role-scoped login, token rotation, logout"},
        {"name": "Scheduling", "description": "Manual and automated timetable construction"},
        {"name": "Classes", "description": "Upcoming/past class timelines and detail"},
        {"name": "Departments", "description": "Departments and sections"},
        {"name": "Courses", "description": "Course catalogue and syllabus"},
        {"name": "Queries", "description": "Student-faculty Q&A threads"},
        {"name": "Profiles", "description": "Profile documents and push subscriptions"},
        {"name": "Resources", "description": "Course resource uploads and signed downloads"},
        {"name": "Push", "description": "Notification dispatcher"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/student/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Student login",
                "parameters": [
                    {"name": "X-Institution-Id", "in": "header", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/general/refresh-token": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate a token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "New pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Stale or revoked refresh token"}
                }
            }
        },
        "/mannual-schedule/assign": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Assign one class into the grid",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignClassRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Room, faculty or section already booked"}
                }
            }
        },
        "/schedule/latest": {
            "get": {
                "tags": ["Scheduling"],
                "summary": "Latest timetable per section",
                "parameters": [
                    {"name": "departmentId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Grouped timetables", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student/classes/upcoming-classes/{studentId}/{n}": {
            "get": {
                "tags": ["Classes"],
                "summary": "Upcoming class at zero-based index n",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "n", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Class, or empty payload when out of range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
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
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "AssignClassRequest": {
            "type": "object",
            "properties": {
                "schedule_id": {"type": "string"},
                "course_id": {"type": "string"},
                "faculty_id": {"type": "string"},
                "room_id": {"type": "string"},
                "section_id": {"type": "string"},
                "slot_id": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "semester": {"type": "integer"},
                "academic_year": {"type": "string"}
            },
            "required": ["schedule_id", "course_id", "faculty_id", "room_id", "section_id", "slot_id", "date"]
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
