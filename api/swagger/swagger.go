package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Registration API",
        "description": "Student course registration, eligibility and grading service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Session management"},
        {"name": "Subjects", "description": "Subject catalog and availability"},
        {"name": "Registrations", "description": "Course registration and rosters"},
        {"name": "Grades", "description": "Grade assignment"},
        {"name": "Students", "description": "Student listing and personal page"}
    ],
    "paths": {
        "/auth/signin": {
            "post": {
                "tags": ["Auth"],
                "summary": "Sign in as a student or the admin",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List the subject catalog",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/subjects/available": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects the signed-in student can still register for",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Student role required"}
                }
            }
        },
        "/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List all registrations for a subject",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Registrations"],
                "summary": "Register the signed-in student for a subject",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Underage or prerequisite not met"},
                    "409": {"description": "Duplicate registration"}
                }
            }
        },
        "/registrations/export": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Export a subject roster as CSV or PDF",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/registrations/{id}/grade": {
            "put": {
                "tags": ["Grades"],
                "summary": "Assign or clear the grade of a registration",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Registration not found"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/students/me": {
            "get": {
                "tags": ["Students"],
                "summary": "Personal page of the signed-in student",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Course Registration API",
	Description:      "Student course registration, eligibility and grading service",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
