package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Admissions & HR API",
        "description": "Admissions backend with transactional student number allocation, offer letters, and the HR job board",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Staff login and token lifecycle"},
        {"name": "Applications", "description": "Admission application submission"},
        {"name": "Allocation", "description": "Student number assignment"},
        {"name": "Number Ranges", "description": "Issuance range administration"},
        {"name": "Offer Letters", "description": "Letter download, verification, and events"},
        {"name": "Assignment Ledger", "description": "Issuance audit trail"},
        {"name": "Jobs", "description": "HR job board"},
        {"name": "Dashboard", "description": "Aggregated admissions figures"}
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
        "/applications/{reference}/assign-number": {
            "post": {
                "tags": ["Allocation"],
                "summary": "Assign a student number to an application",
                "parameters": [
                    {"name": "reference", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Assignment result"},
                    "404": {"description": "Application not found"},
                    "409": {"description": "Active range exhausted"},
                    "412": {"description": "No active range"}
                }
            }
        },
        "/offer-letters/verify/{code}": {
            "get": {
                "tags": ["Offer Letters"],
                "summary": "Verify an offer letter",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Verification result"},
                    "404": {"description": "Unknown code"}
                }
            }
        },
        "/number-ranges": {
            "post": {
                "tags": ["Number Ranges"],
                "summary": "Create and activate a student number range",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid bounds"}
                }
            },
            "get": {
                "tags": ["Number Ranges"],
                "summary": "List all ranges",
                "responses": {
                    "200": {"description": "OK"}
                }
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
