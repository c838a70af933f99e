package web

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/shared"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0"},
		{"999", "₹999"},
		{"1000", "₹1,000"},
		{"150000", "₹1,50,000"},
		{"12345678.5", "₹1,23,45,678.50"},
		{"100.25", "₹100.25"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(decimal.RequireFromString(tt.in)), tt.in)
	}
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "★★★★★", Stars(9))
	assert.Equal(t, "☆☆☆☆☆", Stars(0))
}

func TestRenderer_ParsesEveryView(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []string{
		"error",
		"listings/index",
		"listings/show",
		"listings/new",
		"listings/edit",
		"users/signup",
		"users/login",
	} {
		assert.Contains(t, r.views, name)
	}
	assert.NotContains(t, r.views, "listings/form_fields")
}

func execute(t *testing.T, r *Renderer, name string, data gin.H) string {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(rec))
	return rec.Body.String()
}

func TestRenderer_ShowPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	author := &shared.Actor{ID: uuid.New(), Username: "alice"}
	detail := &model.Detail{
		Listing: model.Listing{
			ID:       uuid.New(),
			Title:    "Cabin <script>",
			Price:    decimal.NewFromInt(150000),
			Category: model.CategoryCamping,
			Geometry: model.Geometry{Longitude: 77.19, Latitude: 32.24},
		},
		Owner: &model.Person{ID: author.ID, Username: "alice"},
		Reviews: []model.ReviewView{
			{ID: uuid.New(), Comment: "Lovely", Rating: 4, CreatedAt: time.Now(), Author: &model.Person{ID: author.ID, Username: "alice"}},
			{ID: uuid.New(), Comment: "Orphaned", Rating: 2},
		},
	}

	body := execute(t, r, "listings/show", gin.H{
		"Title":       detail.Title,
		"Listing":     detail,
		"IsOwner":     true,
		"CurrentUser": author,
		"Success":     []string{"New Review Created!"},
	})

	assert.Contains(t, body, "Cabin &lt;script&gt;")
	assert.Contains(t, body, "₹1,50,000")
	assert.Contains(t, body, "New Review Created!")
	assert.Contains(t, body, `data-lng="77.19"`)
	assert.Contains(t, body, "★★★★☆")
	assert.Contains(t, body, "deleted user")
	assert.Equal(t, 2, bytes.Count([]byte(body), []byte("?_method=DELETE")), "listing delete plus own review delete")
}

func TestRenderer_FormsAndError(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	body := execute(t, r, "listings/new", gin.H{"Form": model.ListingForm{}, "Categories": model.Categories})
	assert.Contains(t, body, `name="listing[image]"`)
	assert.Contains(t, body, "Iconic Cities")

	l := &model.Listing{ID: uuid.New()}
	form := model.ListingForm{Title: "Cabin", Category: "Farms"}
	body = execute(t, r, "listings/edit", gin.H{"Listing": l, "Form": form, "PreviewURL": "/p.jpg", "Categories": model.Categories})
	assert.Contains(t, body, `value="Farms" selected`)
	assert.Contains(t, body, "?_method=PUT")

	body = execute(t, r, "listings/index", gin.H{"Listings": []model.Listing{}, "Category": "Arctic", "Categories": model.Categories})
	assert.Contains(t, body, `class="filter active" href="/listings?category=Arctic"`)

	body = execute(t, r, "error", gin.H{"Status": 404, "Message": "Page Not Found!!"})
	assert.Contains(t, body, "Page Not Found!!")
	assert.NotContains(t, body, "no value")
}

func TestRenderer_MissingView(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Error(t, r.Instance("nope", nil).Render(httptest.NewRecorder()))
}

func TestStatic(t *testing.T) {
	f, err := Static().Open("js/map.js")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
