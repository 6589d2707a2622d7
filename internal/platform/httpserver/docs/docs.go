// Package docs registers the poll program OpenAPI document with swag so the
// /swagger/ UI can serve it.
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
        "/v1/polls": {
            "post": {
                "summary": "Create a poll owned by the signer",
                "parameters": [
                    {"type": "string", "name": "X-Signer", "in": "header", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CreatePollRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.PollResponse"}},
                    "409": {"description": "Poll id already in use", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/polls/{poll_id}": {
            "get": {
                "summary": "Fetch a poll",
                "parameters": [
                    {"type": "integer", "name": "poll_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.PollResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/polls/{poll_id}/candidates": {
            "post": {
                "summary": "Register a candidate (poll creator only)",
                "parameters": [
                    {"type": "string", "name": "X-Signer", "in": "header", "required": true},
                    {"type": "integer", "name": "poll_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.RegisterCandidateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.CandidateResponse"}},
                    "403": {"description": "Signer is not the poll creator", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Candidate name already in use", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/polls/{poll_id}/candidates/{candidate_name}": {
            "get": {
                "summary": "Fetch a candidate and its tally",
                "parameters": [
                    {"type": "integer", "name": "poll_id", "in": "path", "required": true},
                    {"type": "string", "name": "candidate_name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CandidateResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/polls/{poll_id}/votes": {
            "post": {
                "summary": "Cast the signer's single vote in a poll",
                "parameters": [
                    {"type": "string", "name": "X-Signer", "in": "header", "required": true},
                    {"type": "integer", "name": "poll_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CastVoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.VoteResponse"}},
                    "409": {"description": "Signer already voted", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "422": {"description": "Poll is not active", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/polls/{poll_id}/voters/{voter}": {
            "get": {
                "summary": "Report whether an identity has voted",
                "parameters": [
                    {"type": "integer", "name": "poll_id", "in": "path", "required": true},
                    {"type": "string", "name": "voter", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.VoterResponse"}}
                }
            }
        },
        "/v1/polls/{poll_id}/addresses": {
            "get": {
                "summary": "Derive record addresses for a poll",
                "parameters": [
                    {"type": "integer", "name": "poll_id", "in": "path", "required": true},
                    {"type": "string", "name": "candidate_name", "in": "query"},
                    {"type": "string", "name": "voter", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.AddressesResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "http.DerivedAccount": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "bump": {"type": "integer"}}
        },
        "http.CreatePollRequest": {
            "type": "object",
            "properties": {
                "poll_id": {"type": "integer"},
                "description": {"type": "string", "maxLength": 50},
                "start_time": {"type": "integer"},
                "end_time": {"type": "integer"},
                "poll_account": {"type": "string"}
            }
        },
        "http.PollResponse": {
            "type": "object",
            "properties": {
                "poll_id": {"type": "integer"},
                "description": {"type": "string"},
                "start_time": {"type": "integer"},
                "end_time": {"type": "integer"},
                "candidate_count": {"type": "integer"},
                "creator": {"type": "string"},
                "poll_account": {"$ref": "#/definitions/http.DerivedAccount"}
            }
        },
        "http.RegisterCandidateRequest": {
            "type": "object",
            "properties": {
                "candidate_name": {"type": "string", "maxLength": 50},
                "poll_account": {"type": "string"},
                "candidate_account": {"type": "string"}
            }
        },
        "http.CandidateResponse": {
            "type": "object",
            "properties": {
                "poll_id": {"type": "integer"},
                "candidate_name": {"type": "string"},
                "vote_count": {"type": "integer"},
                "candidate_count": {"type": "integer"},
                "candidate_account": {"$ref": "#/definitions/http.DerivedAccount"}
            }
        },
        "http.CastVoteRequest": {
            "type": "object",
            "properties": {
                "candidate_name": {"type": "string"},
                "poll_account": {"type": "string"},
                "candidate_account": {"type": "string"},
                "voter_account": {"type": "string"}
            }
        },
        "http.VoteResponse": {
            "type": "object",
            "properties": {
                "poll_id": {"type": "integer"},
                "candidate_name": {"type": "string"},
                "vote_count": {"type": "integer"},
                "voter": {"type": "string"},
                "voted_at": {"type": "integer"},
                "candidate_account": {"$ref": "#/definitions/http.DerivedAccount"},
                "voter_account": {"$ref": "#/definitions/http.DerivedAccount"}
            }
        },
        "http.VoterResponse": {
            "type": "object",
            "properties": {
                "poll_id": {"type": "integer"},
                "voter": {"type": "string"},
                "state": {"type": "string", "enum": ["not_voted", "voted"]},
                "voter_account": {"$ref": "#/definitions/http.DerivedAccount"}
            }
        },
        "http.AddressesResponse": {
            "type": "object",
            "properties": {
                "program_id": {"type": "string"},
                "poll_id": {"type": "integer"},
                "poll": {"$ref": "#/definitions/http.DerivedAccount"},
                "candidate": {"$ref": "#/definitions/http.DerivedAccount"},
                "voter": {"$ref": "#/definitions/http.DerivedAccount"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agora Poll Program API",
	Description:      "Create polls, register candidates and cast one vote per identity.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
