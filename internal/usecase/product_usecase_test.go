package usecase_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	uc       *usecase.ProductUsecase
	products *ProductRepoMock
	audit    *AuditRepoMock
	images   *ImageStoreMock
	tx       *TxManagerMock
}

func newProductFixture() productFixture {
	products := new(ProductRepoMock)
	audit := new(AuditRepoMock)
	images := new(ImageStoreMock)
	tx := &TxManagerMock{Repos: &TxReposMock{products: products, auditLogs: audit}}
	tx.On("WithinTx", mock.Anything).Return(nil)
	return productFixture{
		uc:       usecase.NewProductUsecase(products, tx, images),
		products: products,
		audit:    audit,
		images:   images,
		tx:       tx,
	}
}

func upload(name string) *usecase.ImageUpload {
	return &usecase.ImageUpload{Filename: name, Content: strings.NewReader("img")}
}

func strp(s string) *string { return &s }

func TestProductUsecase_Get_NotFound(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, int64(99)).Return(nil, repo.ErrNotFound)

	_, err := f.uc.Get(context.Background(), 99)

	assertHTTPStatus(t, err, http.StatusNotFound)
	assertErrContains(t, err, "Product not found")
}

func TestProductUsecase_List(t *testing.T) {
	f := newProductFixture()
	f.products.On("List", mock.Anything).Return([]model.Product{{ID: 2}, {ID: 1}}, nil)

	got, err := f.uc.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestProductUsecase_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      usecase.CreateProductInput
		wantMsg string
	}{
		{name: "missing name", in: usecase.CreateProductInput{Price: "100", Image: upload("a.png")}, wantMsg: "name required"},
		{name: "bad price", in: usecase.CreateProductInput{Name: "x", Price: "abc", Image: upload("a.png")}, wantMsg: "invalid price"},
		{name: "negative price", in: usecase.CreateProductInput{Name: "x", Price: "-1", Image: upload("a.png")}, wantMsg: "price must be > 0"},
		{name: "zero price", in: usecase.CreateProductInput{Name: "x", Price: "0", Image: upload("a.png")}, wantMsg: "price must be > 0"},
		{name: "zero compare at", in: usecase.CreateProductInput{Name: "x", Price: "1", CompareAtPrice: "0.00", Image: upload("a.png")}, wantMsg: "price must be > 0"},
		{name: "bad compare at", in: usecase.CreateProductInput{Name: "x", Price: "1", CompareAtPrice: "?", Image: upload("a.png")}, wantMsg: "invalid price"},
		{name: "missing image", in: usecase.CreateProductInput{Name: "x", Price: "1"}, wantMsg: "image required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()

			_, err := f.uc.Create(context.Background(), "admin", tt.in)

			assertHTTPStatus(t, err, http.StatusBadRequest)
			assertErrContains(t, err, tt.wantMsg)
			f.images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
		})
	}
}

func TestProductUsecase_Create_UnsupportedImage(t *testing.T) {
	f := newProductFixture()
	f.images.On("Save", mock.Anything, "notes.txt").
		Return("", fmt.Errorf("%w: txt", usecase.ErrUnsupportedImage))

	_, err := f.uc.Create(context.Background(), "admin", usecase.CreateProductInput{
		Name: "Oud", Price: "38000", Image: upload("notes.txt"),
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, usecase.ErrUnsupportedImage)
	f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUsecase_Create_Success(t *testing.T) {
	f := newProductFixture()
	f.images.On("Save", mock.Anything, "oud.png").Return("/static/uploads/abc.png", nil)
	f.products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Oud Noir" &&
			p.Price.Equal(decimal.NewFromInt(38000)) &&
			p.CompareAtPrice != nil && p.CompareAtPrice.Equal(decimal.NewFromInt(42000)) &&
			p.ImageURL == "/static/uploads/abc.png" &&
			p.Size == model.DefaultProductSize
	})).Return(model.Product{ID: 5, Name: "Oud Noir", Price: decimal.NewFromInt(38000)}, nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionCreateProduct &&
			l.ResourceID == 5 &&
			l.BeforeJSON == "" &&
			strings.Contains(l.AfterJSON, `"name":"Oud Noir"`)
	})).Return(nil)

	p, err := f.uc.Create(context.Background(), "admin", usecase.CreateProductInput{
		Name:           " Oud Noir ",
		Description:    "smoky",
		Price:          "38000",
		CompareAtPrice: "42000",
		Image:          upload("oud.png"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	f.audit.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func TestProductUsecase_Update_Patch(t *testing.T) {
	f := newProductFixture()
	before := model.Product{ID: 3, Name: "Rose", Price: decimal.NewFromInt(30000), ImageURL: "/static/uploads/r.png", Size: "50ml"}
	after := before
	after.Price = decimal.NewFromInt(32000)

	f.products.On("FindByID", mock.Anything, int64(3)).Return(before, nil).Once()
	f.products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Rose" && p.Price.Equal(decimal.NewFromInt(32000)) && p.ImageURL == "/static/uploads/r.png"
	})).Return(nil)
	f.products.On("FindByID", mock.Anything, int64(3)).Return(after, nil).Once()
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateProduct &&
			strings.Contains(l.BeforeJSON, `"price":30000`) &&
			strings.Contains(l.AfterJSON, `"price":32000`)
	})).Return(nil)

	p, err := f.uc.Update(context.Background(), "admin", 3, usecase.UpdateProductInput{Price: strp("32000")})

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(32000).Equal(p.Price))
	f.images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.products.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestProductUsecase_Update_NotFound(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, int64(8)).Return(nil, repo.ErrNotFound)

	_, err := f.uc.Update(context.Background(), "admin", 8, usecase.UpdateProductInput{Name: strp("x")})

	assertHTTPStatus(t, err, http.StatusNotFound)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductUsecase_Update_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      usecase.UpdateProductInput
		wantMsg string
	}{
		{name: "zero price", in: usecase.UpdateProductInput{Price: strp("0")}, wantMsg: "price must be > 0"},
		{name: "negative price", in: usecase.UpdateProductInput{Price: strp("-5")}, wantMsg: "price must be > 0"},
		{name: "zero compare at", in: usecase.UpdateProductInput{CompareAtPrice: strp("0")}, wantMsg: "price must be > 0"},
		{name: "blank name", in: usecase.UpdateProductInput{Name: strp("  ")}, wantMsg: "name required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()

			_, err := f.uc.Update(context.Background(), "admin", 1, tt.in)

			assertHTTPStatus(t, err, http.StatusBadRequest)
			assertErrContains(t, err, tt.wantMsg)
			f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
			f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
		})
	}
}

func TestProductUsecase_Update_NotFoundKeepsImageUnsaved(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, int64(8)).Return(nil, repo.ErrNotFound)

	_, err := f.uc.Update(context.Background(), "admin", 8, usecase.UpdateProductInput{Image: upload("new.png")})

	assertHTTPStatus(t, err, http.StatusNotFound)
	f.images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestProductUsecase_Delete(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, int64(4)).Return(model.Product{ID: 4, Name: "Vetiver"}, nil)
	f.products.On("Delete", mock.Anything, int64(4)).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteProduct && l.AfterJSON == "" && strings.Contains(l.BeforeJSON, "Vetiver")
	})).Return(nil)

	err := f.uc.Delete(context.Background(), "admin", 4)

	require.NoError(t, err)
	f.products.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestProductUsecase_Delete_NotFound(t *testing.T) {
	f := newProductFixture()
	f.products.On("FindByID", mock.Anything, int64(4)).Return(nil, repo.ErrNotFound)

	err := f.uc.Delete(context.Background(), "admin", 4)

	assertHTTPStatus(t, err, http.StatusNotFound)
	f.products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
