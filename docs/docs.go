// Package docs holds the portal's OpenAPI description served at /swagger
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "description": "Authenticate with email and password. Stores the token in the session cookie and returns the dashboard for the role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.loginResponse"}},
                    "400": {"description": "Invalid credentials format", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Invalid email or password", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Clear the session cookies",
                "tags": ["auth"],
                "summary": "Log out",
                "responses": {"204": {"description": "Logged out"}}
            }
        },
        "/courses": {
            "get": {
                "description": "Public catalog of approved courses",
                "produces": ["application/json"],
                "tags": ["student"],
                "summary": "List approved courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Course"}}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/student/enroll/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Enroll the calling student in a course. Other roles are refused with 403",
                "produces": ["application/json"],
                "tags": ["student"],
                "summary": "Enroll in a course",
                "parameters": [{"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}},
                    "400": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Only students can enroll in courses.", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/student/my-courses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List the calling student's courses with completed/total lesson counts and progress",
                "produces": ["application/json"],
                "tags": ["student"],
                "summary": "List my enrolled courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.EnrolledCourseView"}}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/student/courses/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Return the course lessons in order with their locked/accessible/completed state and the aggregate progress",
                "produces": ["application/json"],
                "tags": ["student"],
                "summary": "Get an enrolled course",
                "parameters": [{"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.CourseView"}},
                    "400": {"description": "Invalid course ID", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Not enrolled", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/student/courses/{id}/lessons/{lessonId}/complete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Mark an accessible lesson complete. The next lesson unlocks only after the backend confirms",
                "produces": ["application/json"],
                "tags": ["student"],
                "summary": "Complete a lesson",
                "parameters": [
                    {"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Lesson ID", "name": "lessonId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.CompletionResult"}},
                    "400": {"description": "Lesson locked or already completed", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/instructor/my-courses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List the courses owned by the calling instructor",
                "produces": ["application/json"],
                "tags": ["instructor"],
                "summary": "List my courses",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Course"}}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/instructor/courses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create a course from a multipart form. Lesson files are uploaded one at a time in lesson order before the course is saved; the first failed upload aborts the save",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["instructor"],
                "summary": "Create a course",
                "parameters": [
                    {"type": "string", "description": "Course title", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "description": "Course description", "name": "description", "in": "formData"},
                    {"type": "integer", "description": "Number of lesson rows", "name": "lessonCount", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.CreatedCourse"}},
                    "400": {"description": "Invalid course", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Authentication required", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "502": {"description": "Upload or backend failure", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/instructor/courses/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Return the course with its lessons in lessonOrder and their existing content",
                "produces": ["application/json"],
                "tags": ["instructor"],
                "summary": "Load a course for editing",
                "parameters": [{"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.courseDraftResponse"}},
                    "400": {"description": "Invalid course ID", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Replace a course from a multipart form. Rows carrying an id keep that lesson; rows without one are added",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["instructor"],
                "summary": "Update a course",
                "parameters": [{"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MessageResponse"}},
                    "400": {"description": "Invalid course", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "502": {"description": "Upload or backend failure", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/instructor/courses/{id}/enrolled-students": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List the students enrolled in a course with their completed and total lesson counts",
                "produces": ["application/json"],
                "tags": ["instructor"],
                "summary": "List enrolled students",
                "parameters": [{"type": "integer", "description": "Course ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.StudentProgressView"}}},
                    "400": {"description": "Invalid course ID", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Return all users and the courses awaiting approval. Either failing fails the request",
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Admin dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Dashboard"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "502": {"description": "Backend unavailable", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/admin/register": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create an account with a role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "New account", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.MessageResponse"}},
                    "400": {"description": "Invalid request or email taken", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/commands": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Dispatch a row action: save-role, delete-user, approve-course, remove-course, edit-course, delete-course or publish-course",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Run a dashboard command",
                "parameters": [
                    {"description": "Command", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CommandRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.CommandResult"}},
                    "400": {"description": "Unknown command or missing reference", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Insufficient permissions", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "apperr.FieldError": {
            "type": "object",
            "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
        },
        "handlers.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/apperr.FieldError"}}
            }
        },
        "handlers.loginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "role": {"type": "string"}, "redirect": {"type": "string"}}
        },
        "handlers.lessonRowResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "contentType": {"type": "string"},
                "existingContent": {"type": "string"},
                "lessonOrder": {"type": "integer"}
            }
        },
        "handlers.courseDraftResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "lessons": {"type": "array", "items": {"$ref": "#/definitions/handlers.lessonRowResponse"}}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "models.RegisterUserRequest": {
            "type": "object",
            "required": ["email", "password", "role", "username"],
            "properties": {
                "username": {"type": "string", "maxLength": 100},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "role": {"type": "string", "enum": ["STUDENT", "INSTRUCTOR", "ADMIN"]}
            }
        },
        "models.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "models.CreatedCourse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}}
        },
        "models.Lesson": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "contentType": {"type": "string", "enum": ["video", "pdf", "image", "audio", "text"]},
                "contentUrl": {"type": "string"},
                "lessonOrder": {"type": "integer"}
            }
        },
        "models.LessonView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "contentType": {"type": "string", "enum": ["video", "pdf", "image", "audio", "text"]},
                "contentUrl": {"type": "string"},
                "lessonOrder": {"type": "integer"},
                "completed": {"type": "boolean"},
                "accessible": {"type": "boolean"}
            }
        },
        "models.UserSummary": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "username": {"type": "string"}, "email": {"type": "string"}}
        },
        "models.User": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "username": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"}}
        },
        "models.Course": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "approved": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "instructor": {"$ref": "#/definitions/models.UserSummary"},
                "lessons": {"type": "array", "items": {"$ref": "#/definitions/models.Lesson"}}
            }
        },
        "models.StudentCourse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "lessons": {"type": "array", "items": {"$ref": "#/definitions/models.LessonView"}}
            }
        },
        "progression.Card": {
            "type": "object",
            "properties": {
                "lesson": {"$ref": "#/definitions/models.LessonView"},
                "state": {"type": "string", "enum": ["locked", "accessible", "completed"]},
                "pending": {"type": "boolean"}
            }
        },
        "progression.Progress": {
            "type": "object",
            "properties": {"completed": {"type": "integer"}, "total": {"type": "integer"}}
        },
        "progression.Transition": {
            "type": "object",
            "properties": {"completed": {"type": "integer"}, "unlocked": {"type": "integer"}, "noOp": {"type": "boolean"}}
        },
        "services.CourseView": {
            "type": "object",
            "properties": {
                "course": {"$ref": "#/definitions/models.StudentCourse"},
                "cards": {"type": "array", "items": {"$ref": "#/definitions/progression.Card"}},
                "progress": {"$ref": "#/definitions/progression.Progress"}
            }
        },
        "services.CompletionResult": {
            "type": "object",
            "properties": {
                "transition": {"$ref": "#/definitions/progression.Transition"},
                "view": {"$ref": "#/definitions/services.CourseView"}
            }
        },
        "services.EnrolledCourseView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "totalLessons": {"type": "integer"},
                "completedLessons": {"type": "integer"},
                "progress": {"$ref": "#/definitions/progression.Progress"}
            }
        },
        "services.StudentProgressView": {
            "type": "object",
            "properties": {
                "studentId": {"type": "integer"},
                "studentName": {"type": "string"},
                "studentEmail": {"type": "string"},
                "completedLessons": {"type": "integer"},
                "totalLessons": {"type": "integer"},
                "progress": {"$ref": "#/definitions/progression.Progress"}
            }
        },
        "services.Dashboard": {
            "type": "object",
            "properties": {
                "users": {"type": "array", "items": {"$ref": "#/definitions/models.User"}},
                "pendingCourses": {"type": "array", "items": {"$ref": "#/definitions/models.Course"}}
            }
        },
        "services.CommandRequest": {
            "type": "object",
            "properties": {
                "command": {"type": "string", "enum": ["save-role", "delete-user", "approve-course", "remove-course", "edit-course", "delete-course", "publish-course"]},
                "userId": {"type": "integer"},
                "courseId": {"type": "integer"},
                "role": {"type": "string"}
            }
        },
        "services.CommandResult": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "redirect": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer token issued by the LMS backend at login",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "LMS Portal API",
	Description:      "Web portal for the LMS backend: catalog, enrollment, lesson progression, course authoring and moderation",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
