// Package docs registra el documento OpenAPI del servicio en swag. Se sirve
// en /swagger/doc.json y la UI en /swagger/index.html.
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
        "/animals": {
            "get": {
                "tags": ["listings"],
                "summary": "Listar animales",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "sex", "in": "query"},
                    {"type": "string", "name": "lifeStage", "in": "query"},
                    {"type": "string", "name": "visibility", "in": "query"},
                    {"type": "boolean", "name": "priority", "in": "query"},
                    {"type": "boolean", "name": "inGroup", "in": "query"},
                    {"type": "boolean", "name": "assigned", "in": "query"},
                    {"type": "string", "name": "bornAfter", "in": "query"},
                    {"type": "string", "name": "bornBefore", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "invalid query parameter"},
                    "503": {"description": "record store unavailable"}
                }
            },
            "post": {
                "tags": ["animals"],
                "summary": "Registrar animal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "invalid json"}
                }
            }
        },
        "/animals/{animalID}": {
            "get": {
                "tags": ["animals"],
                "summary": "Ver animal",
                "parameters": [
                    {"type": "string", "name": "animalID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "animal not found"}
                }
            }
        },
        "/animals/{animalID}/visibility": {
            "patch": {
                "tags": ["visibility"],
                "summary": "Cambiar foster visibility",
                "description": "Si el cambio deja al grupo en conflicto y cascade es null responde 409 con el conflicto. cascade=true aplica a todo el grupo, cascade=false descarta el cambio.",
                "parameters": [
                    {"type": "string", "name": "animalID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "conflict"}
                }
            }
        },
        "/groups": {
            "get": {
                "tags": ["listings"],
                "summary": "Listar grupos",
                "parameters": [
                    {"type": "boolean", "name": "priority", "in": "query"},
                    {"type": "boolean", "name": "assigned", "in": "query"},
                    {"type": "string", "name": "visibility", "in": "query"},
                    {"type": "string", "name": "lifeStage", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["groups"],
                "summary": "Crear grupo de animales",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/groups/{groupID}": {
            "get": {
                "tags": ["groups"],
                "summary": "Ver grupo",
                "parameters": [
                    {"type": "string", "name": "groupID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "group not found"}
                }
            }
        },
        "/groups/{groupID}/visibility": {
            "get": {
                "tags": ["visibility"],
                "summary": "Visibilidad derivada del grupo",
                "parameters": [
                    {"type": "string", "name": "groupID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/needed": {
            "get": {
                "tags": ["listings"],
                "summary": "Listado necesita foster",
                "parameters": [
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "boolean", "name": "priority", "in": "query"},
                    {"type": "string", "name": "lifeStage", "in": "query"},
                    {"type": "string", "name": "sex", "in": "query"},
                    {"type": "string", "name": "visibility", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "securityDefinitions": {
        "DebugOrg": {"type": "apiKey", "name": "X-Debug-Org-ID", "in": "header"}
    }
}`

// SwaggerInfo tiene la metadata exportada del documento.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "foster-tracker API",
	Description:      "Animales, grupos y listados de fosters por organización.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
