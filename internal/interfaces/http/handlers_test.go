package http_test

import (
	"bytes"
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

	appanalytics "github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/auth"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/application/returns"
	"github.com/jhoicas/pos-inventario-api/internal/application/sales"
	"github.com/jhoicas/pos-inventario-api/internal/application/settings"
	"github.com/jhoicas/pos-inventario-api/internal/application/usecase"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/export"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/pos-inventario-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// API completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type testAPI struct {
	app   *fiber.App
	admin string // header Authorization del admin
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	engine := inventory.NewEngine()
	log := zerolog.Nop()
	loc := time.UTC

	settingsUC := settings.NewUseCase(store, repos.Settings, log)
	backupStore, err := storage.NewLocalBackupStore(t.TempDir())
	require.NoError(t, err)
	pdfGen := pdf.NewMarotoPDFGenerator()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC: auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}, log),
		UserUC:           usecase.NewUserUseCase(store.Users()),
		ProductUC:        usecase.NewProductUseCase(store, engine, repos.Products, repos.Categories, settingsUC, log),
		CategoryUC:       usecase.NewCategoryUseCase(repos.Categories, repos.Products),
		ImageUpload:      usecase.NewImageUploadUseCase(t.TempDir(), 0),
		RegisterMovement: inventory.NewRegisterMovementUseCase(store, engine, repos.Movements, repos.Products, log),
		SalesUC:          sales.NewUseCase(store, engine, repos.Sales, pdfGen, settingsUC, log, loc),
		ReturnsUC:        returns.NewUseCase(store, engine, repos.Returns, repos.Sales, log, loc),
		DashboardUC:      appanalytics.NewDashboardUseCase(store.Analytics(), cache.NoopKPICache{}, time.Minute, log, loc),
		ReportUC: appanalytics.NewReportUseCase(store.Analytics(), map[string]appanalytics.ReportRenderer{
			appanalytics.FormatPDF:   pdfGen,
			appanalytics.FormatExcel: export.ExcelRenderer{},
			appanalytics.FormatCSV:   export.CSVRenderer{},
		}, settingsUC, log, loc),
		SettingsUC: settingsUC,
		BackupUC:   settings.NewBackupUseCase(store, backupStore, log, loc),
		JWTSecret:  testJWTSecret,
		Location:   loc,
	})

	api := &testAPI{app: app}
	resp := api.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "Admin@Tienda.com", Password: "secreto1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	api.admin = api.login(t, "admin@tienda.com", "secreto1")
	return api
}

func (a *testAPI) do(t *testing.T, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testAPI) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return "Bearer " + out.Token
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[dto.ErrorResponse](t, resp).Code
}

// createProduct crea un producto con stock inicial y devuelve su ID.
func (a *testAPI) createProduct(t *testing.T, sku string, stock int) string {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/products", a.admin, map[string]any{
		"name": "Producto " + sku, "sku": sku, "price": "2.50", "cost": "1.00", "stock_quantity": stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ProductResponse](t, resp).ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_SoloAdminTrasElPrimerUsuario(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "otro@tienda.com", Password: "secreto1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/auth/register", api.admin, dto.RegisterRequest{Email: "caja@tienda.com", Password: "secreto1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := decode[dto.UserResponse](t, resp)
	assert.Equal(t, "vendedor", user.Role)

	resp = api.do(t, http.MethodPost, "/api/auth/register", api.admin, dto.RegisterRequest{Email: "caja@tienda.com", Password: "secreto1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	vendedor := api.login(t, "caja@tienda.com", "secreto1")
	resp = api.do(t, http.MethodPost, "/api/auth/register", vendedor, dto.RegisterRequest{Email: "x@tienda.com", Password: "secreto1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	me := decode[dto.UserResponse](t, api.do(t, http.MethodGet, "/api/auth/me", vendedor, nil))
	assert.Equal(t, "caja@tienda.com", me.Email)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "admin@tienda.com", Password: "incorrecto"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@tienda.com", Password: "secreto1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas, stock y mapeo de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_DescuentaStockYMapeaErrores(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "ARZ-1", 10)

	resp := api.do(t, http.MethodPost, "/api/sales", api.admin, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, "7.5", sale.FinalAmount.String())

	product := decode[dto.ProductResponse](t, api.do(t, http.MethodGet, "/api/products/"+productID, api.admin, nil))
	assert.Equal(t, 7, product.StockQuantity)

	resp = api.do(t, http.MethodPost, "/api/sales", api.admin, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": 100}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = api.do(t, http.MethodPost, "/api/sales", api.admin, map[string]any{"items": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/products/no-existe", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))

	resp = api.do(t, http.MethodPost, "/api/products", api.admin, map[string]any{"name": "Otro", "sku": "ARZ-1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	history := decode[[]dto.StockMovementResponse](t, api.do(t, http.MethodGet, "/api/products/"+productID+"/movements", api.admin, nil))
	require.Len(t, history, 2)
	assert.Equal(t, "in", history[0].MovementType)
	assert.Equal(t, 7, history[1].NewStock)

	resp = api.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/invoice", api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = api.do(t, http.MethodDelete, "/api/sales/"+sale.ID, api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	product = decode[dto.ProductResponse](t, api.do(t, http.MethodGet, "/api/products/"+productID, api.admin, nil))
	assert.Equal(t, 10, product.StockQuantity)
}

func TestMovimientoManual_AjusteYSalidaInsuficiente(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct(t, "ACE-1", 5)

	resp := api.do(t, http.MethodPost, "/api/inventory/movements", api.admin, dto.RegisterMovementRequest{
		ProductID: productID, MovementType: "adjustment", Quantity: 2, Notes: "conteo",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mov := decode[dto.StockMovementResponse](t, resp)
	assert.Equal(t, 5, mov.PreviousStock)
	assert.Equal(t, 2, mov.NewStock)

	resp = api.do(t, http.MethodPost, "/api/inventory/movements", api.admin, dto.RegisterMovementRequest{
		ProductID: productID, MovementType: "out", Quantity: 3,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/api/inventory/movements", api.admin, dto.RegisterMovementRequest{
		ProductID: productID, MovementType: "transfer", Quantity: 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes, settings y backups
// ──────────────────────────────────────────────────────────────────────────────

func TestReporte_CSVComoAdjunto(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct(t, "ARZ-1", 10)

	resp := api.do(t, http.MethodPost, "/api/reports/generate", api.admin, dto.GenerateReportRequest{ReportType: "inventory", Format: "csv"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), `attachment; filename="inventory_report_`))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "ARZ-1")

	resp = api.do(t, http.MethodPost, "/api/reports/generate", api.admin, dto.GenerateReportRequest{ReportType: "inventory", Format: "docx"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettings_RutasYPermisos(t *testing.T) {
	api := newTestAPI(t)

	dict := decode[map[string]string](t, api.do(t, http.MethodGet, "/api/settings/dict", api.admin, nil))
	assert.Equal(t, "Tk", dict["currency_symbol"])

	resp := api.do(t, http.MethodPut, "/api/settings/bulk", api.admin, map[string]string{"company_name": "Tienda Uno", "theme": "dark"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decode[[]dto.BulkUpdateResult](t, resp)
	require.Len(t, results, 2)
	assert.Equal(t, "company_name", results[0].Key)

	got := decode[dto.SettingResponse](t, api.do(t, http.MethodGet, "/api/settings/theme", api.admin, nil))
	assert.Equal(t, "dark", got.Value)

	resp = api.do(t, http.MethodDelete, "/api/settings/theme", api.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(t, http.MethodPut, "/api/settings/tax_rate", api.admin, dto.SettingRequest{Value: "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	got = decode[dto.SettingResponse](t, api.do(t, http.MethodGet, "/api/settings/low_stock_threshold", api.admin, nil))
	assert.Equal(t, "int", got.Type)

	resp = api.do(t, http.MethodPost, "/api/auth/register", api.admin, dto.RegisterRequest{Email: "caja@tienda.com", Password: "secreto1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vendedor := api.login(t, "caja@tienda.com", "secreto1")

	resp = api.do(t, http.MethodPost, "/api/settings/backup", vendedor, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = api.do(t, http.MethodPut, "/api/settings/theme", vendedor, dto.SettingRequest{Value: "light"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBackup_CrearListarYRestaurar(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct(t, "ARZ-1", 10)

	resp := api.do(t, http.MethodPost, "/api/settings/backup", api.admin, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	backup := decode[dto.BackupResponse](t, resp)
	assert.True(t, strings.HasPrefix(backup.Filename, "inventory_backup_"))

	api.createProduct(t, "ACE-1", 3)
	list := decode[dto.ProductListResponse](t, api.do(t, http.MethodGet, "/api/products", api.admin, nil))
	require.Equal(t, 2, list.Page.Total)

	resp = api.do(t, http.MethodPost, "/api/settings/restore/"+backup.Filename, api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restored := decode[dto.RestoreResponse](t, resp)
	assert.Equal(t, backup.Filename, restored.RestoredFrom)

	list = decode[dto.ProductListResponse](t, api.do(t, http.MethodGet, "/api/products", api.admin, nil))
	assert.Equal(t, 1, list.Page.Total)

	resp = api.do(t, http.MethodPost, "/api/settings/restore/no_existe.zip", api.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRutasProtegidas_SinToken(t *testing.T) {
	api := newTestAPI(t)
	resp := api.do(t, http.MethodGet, "/api/dashboard/kpis", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodGet, "/api/dashboard/kpis", api.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	kpis := decode[dto.DashboardKPIsDTO](t, resp)
	assert.Equal(t, 0, kpis.TotalProducts)
}
