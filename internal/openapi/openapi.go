package openapi

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const bearerAuth = "bearerAuth"

// Build returns the OpenAPI document of the HTTP API, served from serverURL.
func Build(serverURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "homedeck API",
			Description: "Accounts, ordered home-screen app lists and memos.",
			Version:     version,
		},
		Servers: openapi3.Servers{{URL: serverURL}},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: schemas(),
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerAuth: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	addAuthPaths(doc)
	addAppPaths(doc)
	addMemoPaths(doc)
	addSystemPaths(doc)

	return doc
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func arrayOf(name string) *openapi3.SchemaRef {
	s := openapi3.NewArraySchema()
	s.Items = ref(name)
	return s.NewRef()
}

// envelope wraps payload in the response envelope every endpoint returns.
func envelope(payload *openapi3.SchemaRef) *openapi3.SchemaRef {
	s := openapi3.NewObjectSchema().
		WithProperty("success", openapi3.NewBoolSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("statusCode", openapi3.NewIntegerSchema())
	if payload != nil {
		s.Properties["responseObject"] = payload
	} else {
		s.Properties["responseObject"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().WithNullable())
	}
	s.Required = []string{"success", "message", "responseObject", "statusCode"}
	return s.NewRef()
}

type operation struct {
	method      string
	path        string
	tag         string
	summary     string
	id          string
	secured     bool
	body        string
	params      openapi3.Parameters
	status      int
	description string
	payload     *openapi3.SchemaRef
	failures    []int
}

func add(doc *openapi3.T, o operation) {
	op := openapi3.NewOperation()
	op.OperationID = o.id
	op.Summary = o.summary
	op.Tags = []string{o.tag}
	op.Parameters = o.params

	if o.secured {
		op.Security = openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate(bearerAuth))
		o.failures = append(o.failures, http.StatusUnauthorized)
	}
	if o.body != "" {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref(o.body)),
		}
		o.failures = append(o.failures, http.StatusBadRequest)
	}

	op.AddResponse(o.status, openapi3.NewResponse().
		WithDescription(o.description).
		WithJSONSchemaRef(envelope(o.payload)))
	for _, status := range o.failures {
		op.AddResponse(status, openapi3.NewResponse().
			WithDescription(http.StatusText(status)).
			WithJSONSchemaRef(envelope(nil)))
	}

	doc.AddOperation(o.path, o.method, op)
}

func idParam() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewIntegerSchema().WithMin(1)),
	}
}

func addAuthPaths(doc *openapi3.T) {
	add(doc, operation{
		method: http.MethodPost, path: "/auth/signup", tag: "Auth", id: "signup",
		summary: "Register a new user", body: "SignupRequest",
		status: http.StatusCreated, description: "User registered successfully",
		payload: ref("User"), failures: []int{http.StatusConflict},
	})
	add(doc, operation{
		method: http.MethodPost, path: "/auth/login", tag: "Auth", id: "login",
		summary: "Log in and receive a bearer token", body: "LoginRequest",
		status: http.StatusOK, description: "Login successful",
		payload: ref("LoginResponse"), failures: []int{http.StatusUnauthorized},
	})
}

func addAppPaths(doc *openapi3.T) {
	for _, prefix := range []string{"/apps", "/me/apps"} {
		add(doc, operation{
			method: http.MethodGet, path: prefix, tag: "Apps", id: "getUserApps" + opSuffix(prefix),
			summary: "Get the ordered app list of the current user", secured: true,
			status: http.StatusOK, description: "User apps retrieved successfully",
			payload: arrayOf("UserApp"),
		})
		add(doc, operation{
			method: http.MethodPut, path: prefix + "/order", tag: "Apps", id: "replaceUserApps" + opSuffix(prefix),
			summary: "Replace the ordered app list of the current user", secured: true,
			body:   "UpdateAppOrderRequest",
			status: http.StatusOK, description: "App order saved successfully",
			payload: ref("SuccessResult"), failures: []int{http.StatusConflict},
		})
	}
	add(doc, operation{
		method: http.MethodGet, path: "/apps/catalog", tag: "Apps", id: "getAppCatalog",
		summary: "List every known app", secured: true,
		status: http.StatusOK, description: "Apps retrieved successfully",
		payload: arrayOf("App"),
	})
}

func opSuffix(prefix string) string {
	if prefix == "/me/apps" {
		return "Me"
	}
	return ""
}

func addMemoPaths(doc *openapi3.T) {
	memoType := &openapi3.ParameterRef{
		Value: openapi3.NewQueryParameter("memoType").
			WithSchema(openapi3.NewIntegerSchema().WithEnum(1, 2)),
	}

	add(doc, operation{
		method: http.MethodGet, path: "/memos", tag: "Memo", id: "listMemos",
		summary: "Get all memos of the current user", secured: true,
		params: openapi3.Parameters{memoType},
		status: http.StatusOK, description: "Memos retrieved successfully",
		payload: arrayOf("Memo"), failures: []int{http.StatusBadRequest},
	})
	add(doc, operation{
		method: http.MethodPost, path: "/memos", tag: "Memo", id: "createMemo",
		summary: "Create a memo", secured: true, body: "CreateMemoRequest",
		status: http.StatusCreated, description: "Memo created successfully",
		payload: ref("Memo"),
	})
	add(doc, operation{
		method: http.MethodGet, path: "/memos/{id}", tag: "Memo", id: "getMemo",
		summary: "Get a memo", secured: true, params: openapi3.Parameters{idParam()},
		status: http.StatusOK, description: "Memo retrieved successfully",
		payload: ref("Memo"), failures: []int{http.StatusNotFound},
	})
	add(doc, operation{
		method: http.MethodPatch, path: "/memos/{id}", tag: "Memo", id: "updateMemo",
		summary: "Update a memo", secured: true, params: openapi3.Parameters{idParam()},
		body:   "UpdateMemoRequest",
		status: http.StatusOK, description: "Memo updated successfully",
		payload: ref("Memo"), failures: []int{http.StatusNotFound},
	})
	add(doc, operation{
		method: http.MethodDelete, path: "/memos/{id}", tag: "Memo", id: "deleteMemo",
		summary: "Delete a memo", secured: true, params: openapi3.Parameters{idParam()},
		status: http.StatusOK, description: "Memo deleted successfully",
		payload: ref("SuccessResult"), failures: []int{http.StatusNotFound},
	})
}

func addSystemPaths(doc *openapi3.T) {
	add(doc, operation{
		method: http.MethodGet, path: "/health", tag: "System", id: "health",
		summary: "Service health", status: http.StatusOK, description: "Service is healthy",
		payload: ref("Health"), failures: []int{http.StatusServiceUnavailable},
	})
}

func schemas() openapi3.Schemas {
	nonEmpty := func() *openapi3.Schema { return openapi3.NewStringSchema().WithMinLength(1) }
	dateTime := func() *openapi3.Schema { return openapi3.NewDateTimeSchema() }
	memoType := openapi3.NewIntegerSchema().WithEnum(1, 2)

	obj := func(required []string, props map[string]*openapi3.Schema) *openapi3.SchemaRef {
		s := openapi3.NewObjectSchema().WithProperties(props)
		s.Required = required
		return s.NewRef()
	}

	return openapi3.Schemas{
		"SignupRequest": obj([]string{"name", "password"}, map[string]*openapi3.Schema{
			"name":     nonEmpty().WithMaxLength(50),
			"password": openapi3.NewStringSchema().WithMinLength(4),
			"isChild":  openapi3.NewBoolSchema(),
		}),
		"LoginRequest": obj([]string{"name", "password"}, map[string]*openapi3.Schema{
			"name":     nonEmpty(),
			"password": nonEmpty(),
		}),
		"User": obj([]string{"id", "name", "isChild"}, map[string]*openapi3.Schema{
			"id":        openapi3.NewIntegerSchema(),
			"name":      openapi3.NewStringSchema(),
			"isChild":   openapi3.NewBoolSchema(),
			"createdAt": dateTime(),
		}),
		"LoginResponse": obj([]string{"token", "user"}, map[string]*openapi3.Schema{
			"token": openapi3.NewStringSchema(),
			"user": openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
				"id":      openapi3.NewIntegerSchema(),
				"name":    openapi3.NewStringSchema(),
				"isChild": openapi3.NewBoolSchema(),
			}),
		}),
		"UserApp": obj([]string{"appId", "name", "imgPath", "runPath", "order"}, map[string]*openapi3.Schema{
			"appId":   openapi3.NewIntegerSchema(),
			"name":    openapi3.NewStringSchema(),
			"imgPath": openapi3.NewStringSchema(),
			"runPath": openapi3.NewStringSchema(),
			"order":   openapi3.NewIntegerSchema().WithMin(1),
		}),
		"App": obj([]string{"id", "name", "imgPath", "runPath"}, map[string]*openapi3.Schema{
			"id":      openapi3.NewIntegerSchema(),
			"name":    openapi3.NewStringSchema(),
			"imgPath": openapi3.NewStringSchema(),
			"runPath": openapi3.NewStringSchema(),
		}),
		"UpdateAppOrderRequest": obj([]string{"apps"}, map[string]*openapi3.Schema{
			"apps": openapi3.NewArraySchema().WithMinItems(1).WithItems(
				openapi3.NewObjectSchema().WithProperties(map[string]*openapi3.Schema{
					"id":      openapi3.NewIntegerSchema().WithMin(1),
					"name":    nonEmpty(),
					"imgPath": nonEmpty(),
					"runPath": nonEmpty(),
				}).WithoutAdditionalProperties(),
			),
		}),
		"Memo": obj([]string{"id", "memoType", "title", "subtitle", "createdAt", "updatedAt"}, map[string]*openapi3.Schema{
			"id":        openapi3.NewIntegerSchema(),
			"memoType":  memoType,
			"title":     openapi3.NewStringSchema(),
			"subtitle":  openapi3.NewStringSchema(),
			"createdAt": dateTime(),
			"updatedAt": dateTime(),
		}),
		"CreateMemoRequest": obj([]string{"memoType", "title", "subtitle"}, map[string]*openapi3.Schema{
			"memoType": memoType,
			"title":    nonEmpty(),
			"subtitle": nonEmpty(),
		}),
		"UpdateMemoRequest": obj(nil, map[string]*openapi3.Schema{
			"title":    nonEmpty(),
			"subtitle": nonEmpty(),
		}),
		"SuccessResult": obj([]string{"success"}, map[string]*openapi3.Schema{
			"success": openapi3.NewBoolSchema(),
		}),
		"Health": obj([]string{"status", "database"}, map[string]*openapi3.Schema{
			"status":     openapi3.NewStringSchema().WithEnum("ok", "degraded"),
			"database":   openapi3.NewStringSchema(),
			"uptime":     openapi3.NewStringSchema(),
			"timestamp":  dateTime(),
			"goroutines": openapi3.NewIntegerSchema(),
			"memoryRss":  openapi3.NewIntegerSchema(),
			"cache": obj([]string{"cacheName", "cacheType"}, map[string]*openapi3.Schema{
				"cacheName": openapi3.NewStringSchema(),
				"cacheType": openapi3.NewStringSchema().WithEnum("memory", "redis"),
				"Hits":      openapi3.NewIntegerSchema(),
				"Miss":      openapi3.NewIntegerSchema(),
			}).Value,
		}),
	}
}
