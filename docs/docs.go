// Package docs holds the OpenAPI document served on /swagger. Keep it in line with the
// godoc annotations of controllers_v2.
package docs

import "github.com/swaggo/swag"

const docTemplate = `
{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Terra Capital"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth": {
            "post": {
                "summary": "Wallet login",
                "tags": [
                    "Auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/v2controllers.AuthResponseBody"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/v2controllers.AuthRequestBody"
                        }
                    }
                ]
            }
        },
        "/health": {
            "get": {
                "summary": "Health check",
                "tags": [
                    "Health"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/v2/assets": {
            "get": {
                "summary": "List assets",
                "tags": [
                    "Asset"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/v2controllers.ListAssetsResponseBody"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "First asset id",
                        "name": "from_id",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size (max 50)",
                        "name": "limit",
                        "in": "query"
                    }
                ]
            },
            "post": {
                "summary": "Create an asset",
                "tags": [
                    "Asset"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/market.Asset"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/v2controllers.CreateAssetRequestBody"
                        }
                    }
                ]
            }
        },
        "/v2/assets/{id}": {
            "get": {
                "summary": "Get an asset",
                "tags": [
                    "Asset"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/market.Asset"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Asset id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/v2/assets/{id}/active": {
            "put": {
                "summary": "Toggle sale of an asset",
                "tags": [
                    "Asset"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/market.Asset"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Asset id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Request body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/v2controllers.SetAssetActiveRequestBody"
                        }
                    }
                ]
            }
        },
        "/v2/assets/{id}/balance": {
            "get": {
                "summary": "Asset tokens held by a buyer",
                "tags": [
                    "Asset"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/v2controllers.BuyerBalanceResponseBody"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Asset id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Buyer principal",
                        "name": "buyer",
                        "in": "query"
                    }
                ]
            }
        },
        "/v2/assets/{id}/preview": {
            "get": {
                "summary": "Quote a purchase",
                "tags": [
                    "Purchase"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/market.PurchaseReceipt"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Asset id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Token quantity",
                        "name": "quantity",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Buyer principal",
                        "name": "buyer",
                        "in": "query"
                    }
                ]
            }
        },
        "/v2/purchases": {
            "post": {
                "summary": "Buy asset tokens",
                "tags": [
                    "Purchase"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/market.PurchaseReceipt"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/v2controllers.BuyTokensRequestBody"
                        }
                    }
                ]
            },
            "get": {
                "summary": "Purchase history",
                "tags": [
                    "Purchase"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Page size (max 50)",
                        "name": "limit",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset",
                        "name": "offset",
                        "in": "query"
                    }
                ]
            }
        },
        "/v2/registry/purchases": {
            "post": {
                "summary": "Buy through the registry",
                "tags": [
                    "Purchase"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/market.PurchaseReceipt"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/v2controllers.BuyTokensRequestBody"
                        }
                    }
                ]
            }
        },
        "/v2/payments/balance": {
            "get": {
                "summary": "Payment token balance",
                "tags": [
                    "Payment"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ]
            }
        },
        "/v2/networks/active": {
            "get": {
                "summary": "Active settlement network",
                "tags": [
                    "Network"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/v2/networks/{network}/payment-token": {
            "get": {
                "summary": "Payment token of a network",
                "tags": [
                    "Network"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "testnet or mainnet",
                        "name": "network",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/v2/admin/settings": {
            "get": {
                "summary": "Coordinator settings",
                "tags": [
                    "Admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ]
            }
        },
        "/v2/admin/fee": {
            "put": {
                "summary": "Update treasury and platform fee",
                "tags": [
                    "Admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/v2controllers.FeeConfigRequestBody"
                        }
                    }
                ]
            }
        },
        "/v2/admin/payment-token": {
            "put": {
                "summary": "Update the fallback payment token",
                "tags": [
                    "Admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ]
            }
        },
        "/v2/admin/networks/{network}/payment-token": {
            "put": {
                "summary": "Map a network to a payment token",
                "tags": [
                    "Admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "testnet or mainnet",
                        "name": "network",
                        "in": "path",
                        "required": true
                    }
                ]
            }
        },
        "/v2/admin/networks/active": {
            "put": {
                "summary": "Switch the active network",
                "tags": [
                    "Admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ]
            }
        },
        "/v2/admin/liquidity": {
            "put": {
                "summary": "Configure the liquidity fee share",
                "tags": [
                    "Admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ]
            }
        },
        "/v2/admin/mint": {
            "post": {
                "summary": "Mint payment tokens",
                "tags": [
                    "Admin"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "security": [
                    {
                        "OAuth2Password": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Request body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/v2controllers.MintRequestBody"
                        }
                    }
                ]
            }
        },
        "/api/stellar/network": {
            "get": {
                "summary": "Network status",
                "tags": [
                    "Network"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/responses.ErrorResponse"
                        }
                    }
                },
                "parameters": [
                    {
                        "type": "string",
                        "description": "testnet or public",
                        "name": "network",
                        "in": "query"
                    }
                ]
            }
        }
    },
    "definitions": {
        "responses.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "boolean"
                },
                "code": {
                    "type": "integer"
                },
                "kind": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "market.Asset": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "seller": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "price_per_token": {
                    "type": "string"
                },
                "total_tokens": {
                    "type": "string"
                },
                "available_tokens": {
                    "type": "string"
                },
                "active": {
                    "type": "boolean"
                }
            }
        },
        "market.PurchaseReceipt": {
            "type": "object",
            "properties": {
                "asset_id": {
                    "type": "integer"
                },
                "seller": {
                    "type": "string"
                },
                "buyer": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string"
                },
                "total_paid": {
                    "type": "string"
                },
                "fee_paid": {
                    "type": "string"
                },
                "seller_amount": {
                    "type": "string"
                }
            }
        },
        "v2controllers.AuthRequestBody": {
            "type": "object",
            "properties": {
                "principal": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "integer"
                },
                "signature": {
                    "type": "string"
                }
            }
        },
        "v2controllers.AuthResponseBody": {
            "type": "object",
            "properties": {
                "access_token": {
                    "type": "string"
                }
            }
        },
        "v2controllers.CreateAssetRequestBody": {
            "type": "object",
            "properties": {
                "category": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "price_per_token": {
                    "type": "string"
                },
                "total_tokens": {
                    "type": "string"
                }
            }
        },
        "v2controllers.SetAssetActiveRequestBody": {
            "type": "object",
            "properties": {
                "active": {
                    "type": "boolean"
                }
            }
        },
        "v2controllers.ListAssetsResponseBody": {
            "type": "object",
            "properties": {
                "assets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/market.Asset"
                    }
                },
                "next_id": {
                    "type": "integer"
                }
            }
        },
        "v2controllers.BuyerBalanceResponseBody": {
            "type": "object",
            "properties": {
                "asset_id": {
                    "type": "integer"
                },
                "buyer": {
                    "type": "string"
                },
                "balance": {
                    "type": "string"
                }
            }
        },
        "v2controllers.BuyTokensRequestBody": {
            "type": "object",
            "properties": {
                "asset_id": {
                    "type": "integer"
                },
                "quantity": {
                    "type": "string"
                }
            }
        },
        "v2controllers.FeeConfigRequestBody": {
            "type": "object",
            "properties": {
                "treasury": {
                    "type": "string"
                },
                "fee_bps": {
                    "type": "integer"
                }
            }
        },
        "v2controllers.MintRequestBody": {
            "type": "object",
            "properties": {
                "to": {
                    "type": "string"
                },
                "amount": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "OAuth2Password": {
            "type": "oauth2",
            "flow": "password",
            "tokenUrl": "/auth"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"https", "http"},
	Title:            "Terra Marketplace",
	Description:      "Tokenized asset marketplace: asset registry, purchase coordinator and payment ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
