package productcontroller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mercato-dev/mercato-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProductRepo struct {
	products    []models.Product
	total       int64
	lastFilters models.ProductFilters
	lastPage    int
	lastLimit   int
}

func (m *mockProductRepo) List(filters models.ProductFilters, page, limit int) ([]models.Product, int64, error) {
	m.lastFilters = filters
	m.lastPage = page
	m.lastLimit = limit
	return m.products, m.total, nil
}

func (m *mockProductRepo) All() ([]models.Product, error)              { return m.products, nil }
func (m *mockProductRepo) FindByID(id uint) (*models.Product, error)   { return nil, models.ErrProductNotFound }
func (m *mockProductRepo) FindBySKU(sku string) (*models.Product, error) {
	return nil, models.ErrProductNotFound
}
func (m *mockProductRepo) Create(product *models.Product) error { return nil }
func (m *mockProductRepo) Update(product *models.Product) error { return nil }
func (m *mockProductRepo) Delete(id uint) error                 { return nil }
func (m *mockProductRepo) AddReview(review *models.Review) error {
	return nil
}

type mockCategoryResolver struct {
	subtree map[uint][]uint
}

func (m *mockCategoryResolver) SubtreeIDs(id uint) ([]uint, error) {
	ids, ok := m.subtree[id]
	if !ok {
		return nil, models.ErrCategoryNotFound
	}
	return ids, nil
}

func listRequest(t *testing.T, repo ProductProvider, categories CategoryResolver, url string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products", GetProducts(repo, categories))

	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetProductsPagination(t *testing.T) {
	repo := &mockProductRepo{
		products: []models.Product{{ID: 1, Name: "mug", Price: decimal.NewFromInt(25)}},
		total:    25,
	}
	resolver := &mockCategoryResolver{}

	rec := listRequest(t, repo, resolver, "/products?page=2&limit=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products   []models.Product `json:"products"`
		Pagination struct {
			CurrentPage   int   `json:"currentPage"`
			TotalPages    int   `json:"totalPages"`
			TotalProducts int64 `json:"totalProducts"`
			HasNext       bool  `json:"hasNext"`
			HasPrev       bool  `json:"hasPrev"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Len(t, resp.Products, 1)
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, int64(25), resp.Pagination.TotalProducts)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)

	assert.Equal(t, 2, repo.lastPage)
	assert.Equal(t, 10, repo.lastLimit)
}

func TestGetProductsDefaultsAndClamping(t *testing.T) {
	repo := &mockProductRepo{}
	resolver := &mockCategoryResolver{}

	listRequest(t, repo, resolver, "/products?page=-3&limit=1000")

	assert.Equal(t, 1, repo.lastPage)
	assert.Equal(t, 12, repo.lastLimit)
	assert.Equal(t, "created_at", repo.lastFilters.SortBy)
	assert.Equal(t, "desc", repo.lastFilters.SortOrder)
}

func TestGetProductsExpandsCategorySubtree(t *testing.T) {
	repo := &mockProductRepo{}
	resolver := &mockCategoryResolver{subtree: map[uint][]uint{3: {3, 7, 9}}}

	rec := listRequest(t, repo, resolver, "/products?category=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint{3, 7, 9}, repo.lastFilters.CategoryIDs)

	rec = listRequest(t, repo, resolver, "/products?category=99")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = listRequest(t, repo, resolver, "/products?category=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductsParsesFilters(t *testing.T) {
	repo := &mockProductRepo{}
	resolver := &mockCategoryResolver{}

	rec := listRequest(t, repo, resolver, "/products?search=mug&brand=acme&minPrice=5&maxPrice=50&rating=4&tags=kitchen,gift&featured=true")
	require.Equal(t, http.StatusOK, rec.Code)

	f := repo.lastFilters
	assert.Equal(t, "mug", f.Search)
	assert.Equal(t, "acme", f.Brand)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 5.0, *f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 50.0, *f.MaxPrice)
	require.NotNil(t, f.MinRating)
	assert.Equal(t, 4.0, *f.MinRating)
	assert.Equal(t, []string{"kitchen", "gift"}, f.Tags)
	require.NotNil(t, f.Featured)
	assert.True(t, *f.Featured)
}
