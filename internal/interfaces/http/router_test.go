package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/export"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const (
	coffee = "00000000-0000-0000-0000-0000000000d1"
	sugar  = "00000000-0000-0000-0000-0000000000d2"
)

type apiClient struct {
	t      *testing.T
	app    *fiber.App
	tokens map[string]string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	db := memory.NewStore()
	memory.SeedDemo(db)

	deps := inventory.Deps{
		TxRunner: db,
		Reader:   db.Reader(),
		Catalog:  db,
		Branches: db,
		Access:   db,
		Users:    db,
		Logger:   zerolog.Nop(),
	}
	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Query:         inventory.NewQueryUseCase(deps),
		Stock:         inventory.NewStockUseCase(deps),
		Replenishment: inventory.NewReplenishmentUseCase(deps),
		Movements:     inventory.NewMovementUseCase(deps, export.NewMovementsXLSX()),
		Transfers:     inventory.NewTransferUseCase(deps, idem, time.Hour),
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testIssuer,
	})

	tokens := map[string]string{}
	for role, user := range map[string]string{
		"admin":     memory.DemoAdminID,
		"bodeguero": memory.DemoClerkID,
		"vendedor":  memory.DemoSellerID,
	} {
		tok, err := pkgjwt.Generate(testJWTSecret, user, memory.DemoCompanyID, role, testIssuer, testExpMin)
		require.NoError(t, err)
		tokens[role] = "Bearer " + tok
	}
	return &apiClient{t: t, app: app, tokens: tokens}
}

// do envía la petición como role y decodifica el JSON en out (si no es nil).
func (a *apiClient) do(role, method, path, body string, headers map[string]string, out any) *http.Response {
	a.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", a.tokens[role])
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (a *apiClient) purchase(branchID, productID, qty string) {
	a.t.Helper()
	resp := a.do("admin", http.MethodPost, "/api/inventory/movements/purchase",
		`{"branch_id":"`+branchID+`","product_id":"`+productID+`","quantity":`+qty+`,"cost_per_unit":"10"}`, nil, nil)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestAPI_CompraYConsulta(t *testing.T) {
	api := newAPI(t)
	api.purchase(memory.DemoMainBranchID, coffee, "30")

	var list struct {
		Items []map[string]any `json:"items"`
		Page  struct {
			Total int `json:"total"`
		} `json:"page"`
	}
	resp := api.do("vendedor", http.MethodGet, "/api/inventory?branch_id="+memory.DemoMainBranchID, "", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, list.Page.Total)
	assert.Equal(t, coffee, list.Items[0]["product_id"])
	assert.Equal(t, "30", list.Items[0]["quantity"])
	assert.Equal(t, "in_stock", list.Items[0]["stock_status"])

	var movs struct {
		Items []map[string]any `json:"items"`
	}
	resp = api.do("bodeguero", http.MethodGet, "/api/inventory/movements?type=purchase", "", nil, &movs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, "300", movs.Items[0]["total_cost"])
}

func TestAPI_VentaSinStock_Retorna409(t *testing.T) {
	api := newAPI(t)
	api.purchase(memory.DemoMainBranchID, coffee, "2")

	var e errorBody
	resp := api.do("vendedor", http.MethodPost, "/api/inventory/movements/sale",
		`{"branch_id":"`+memory.DemoMainBranchID+`","product_id":"`+coffee+`","quantity":5}`, nil, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
}

func TestAPI_ValidacionYCuerpoInvalido(t *testing.T) {
	api := newAPI(t)

	var e errorBody
	resp := api.do("admin", http.MethodPost, "/api/inventory/adjust", `{"product_id":"`+coffee+`","new_quantity":3}`, nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "BranchID")

	resp = api.do("admin", http.MethodPost, "/api/inventory/adjust", `{no es json`, nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", e.Code)

	resp = api.do("admin", http.MethodGet, "/api/inventory/movements?from=ayer", "", nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", e.Code)

	for _, typ := range []string{"transfer_in", "transfer_out"} {
		resp = api.do("admin", http.MethodPost, "/api/inventory/movements",
			`{"branch_id":"`+memory.DemoMainBranchID+`","product_id":"`+coffee+`","quantity":10,"type":"`+typ+`"}`, nil, &e)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, typ)
		assert.Equal(t, "VALIDATION", e.Code, typ)
	}

	resp = api.do("admin", http.MethodPost, "/api/inventory/movements/purchase",
		`{"branch_id":"`+memory.DemoMainBranchID+`","product_id":"`+coffee+`","quantity":123456789012.00}`, nil, &e)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", e.Code)
}

func TestAPI_VendedorNoAjusta(t *testing.T) {
	api := newAPI(t)

	var e errorBody
	resp := api.do("vendedor", http.MethodPost, "/api/inventory/adjust",
		`{"branch_id":"`+memory.DemoMainBranchID+`","product_id":"`+coffee+`","new_quantity":3}`, nil, &e)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", e.Code)
}

func TestAPI_TrasladoIdempotenteYCicloCompleto(t *testing.T) {
	api := newAPI(t)
	api.purchase(memory.DemoMainBranchID, sugar, "20")

	body := `{"from_branch_id":"` + memory.DemoMainBranchID + `","to_branch_id":"` + memory.DemoNorthBranchID +
		`","items":[{"product_id":"` + sugar + `","quantity":8}]}`
	key := map[string]string{apphttp.HeaderIdempotencyKey: "tr-001"}

	var first, second map[string]any
	resp := api.do("bodeguero", http.MethodPost, "/api/transfers", body, key, &first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", first["status"])
	resp = api.do("bodeguero", http.MethodPost, "/api/transfers", body, key, &second)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, first["id"], second["id"], "la misma clave devuelve el mismo traslado")

	id := first["id"].(string)
	var out map[string]any
	resp = api.do("bodeguero", http.MethodPost, "/api/transfers/"+id+"/send", "", nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "in_transit", out["status"])

	resp = api.do("admin", http.MethodPost, "/api/transfers/"+id+"/complete", "", nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", out["status"])

	var e errorBody
	resp = api.do("admin", http.MethodPost, "/api/transfers/"+id+"/cancel", `{"reason":"tarde"}`, nil, &e)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE", e.Code)

	var list struct {
		Items []map[string]any `json:"items"`
	}
	resp = api.do("vendedor", http.MethodGet, "/api/transfers?status=completed&branch_id="+memory.DemoNorthBranchID, "", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Items, 1)

	var rec struct {
		Consistent bool `json:"consistent"`
	}
	resp = api.do("admin", http.MethodGet,
		"/api/inventory/reconcile?branch_id="+memory.DemoNorthBranchID+"&product_id="+sugar, "", nil, &rec)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, rec.Consistent)
}

func TestAPI_CancelarSinCuerpo(t *testing.T) {
	api := newAPI(t)
	api.purchase(memory.DemoMainBranchID, coffee, "10")

	var created, out map[string]any
	resp := api.do("admin", http.MethodPost, "/api/transfers",
		`{"from_branch_id":"`+memory.DemoMainBranchID+`","to_branch_id":"`+memory.DemoNorthBranchID+
			`","items":[{"product_id":"`+coffee+`","quantity":4}]}`, nil, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = api.do("admin", http.MethodPost, "/api/transfers/"+created["id"].(string)+"/cancel", "", nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", out["status"])
}

func TestAPI_TrasladoInexistente_Retorna404(t *testing.T) {
	api := newAPI(t)

	var e errorBody
	resp := api.do("vendedor", http.MethodGet, "/api/transfers/no-existe", "", nil, &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", e.Code)
}

func TestAPI_ExportarMovimientos(t *testing.T) {
	api := newAPI(t)
	api.purchase(memory.DemoMainBranchID, coffee, "3")

	resp := api.do("bodeguero", http.MethodGet, "/api/inventory/movements/export", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.ContentTypeXLSX, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "movimientos_")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestAPI_ListaReposicion(t *testing.T) {
	api := newAPI(t)
	// leche: reorden 24, con 6 unidades queda en reposición
	api.purchase(memory.DemoMainBranchID, "00000000-0000-0000-0000-0000000000d3", "6")

	var out struct {
		Total          int              `json:"total"`
		Replenishments []map[string]any `json:"replenishments"`
	}
	resp := api.do("vendedor", http.MethodGet, "/api/inventory/replenishment-list?branch_id="+memory.DemoMainBranchID, "", nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "LECHE-1L", out.Replenishments[0]["sku"])
}
