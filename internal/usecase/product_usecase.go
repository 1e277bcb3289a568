package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// 商品画像の保存先（ローカル / S3）
// 戻り値は商品行に保存する公開URL。
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// multipartのファイル1つ分
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type ProductUsecase struct {
	productRepo repo.ProductRepository
	tx          repo.TransactionManager
	images      ImageStore
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	tx repo.TransactionManager,
	images ImageStore,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		tx:          tx,
		images:      images,
	}
}

// 新しい順
func (u *ProductUsecase) List(ctx context.Context) ([]model.Product, error) {
	items, err := u.productRepo.List(ctx)
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) Get(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, WrapHTTPError(http.StatusBadRequest, "invalid product id", ErrValidation)
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, WrapHTTPError(http.StatusNotFound, "Product not found", err)
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 価格はフォーム文字列のまま受け取る
type CreateProductInput struct {
	Name           string
	Description    string
	Price          string
	CompareAtPrice string
	Size           string
	Notes          string
	Image          *ImageUpload
}

// 画像は必須
func (u *ProductUsecase) Create(ctx context.Context, actor string, in CreateProductInput) (model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, WrapHTTPError(http.StatusBadRequest, "name required", ErrValidation)
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return model.Product{}, err
	}
	var compareAt *decimal.Decimal
	if strings.TrimSpace(in.CompareAtPrice) != "" {
		c, err := parsePrice(in.CompareAtPrice)
		if err != nil {
			return model.Product{}, err
		}
		compareAt = &c
	}
	if in.Image == nil {
		return model.Product{}, WrapHTTPError(http.StatusBadRequest, "image required", ErrValidation)
	}

	imageURL, err := storeImage(ctx, u.images, in.Image)
	if err != nil {
		return model.Product{}, err
	}

	size := strings.TrimSpace(in.Size)
	if size == "" {
		size = model.DefaultProductSize
	}

	var created model.Product
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().Create(ctx, model.Product{
			Name:           name,
			Description:    in.Description,
			Price:          price,
			CompareAtPrice: compareAt,
			ImageURL:       imageURL,
			Size:           size,
			Notes:          in.Notes,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created = p

		//監査ログ（作成）
		return writeAudit(ctx, r, actor, model.AuditActionCreateProduct, model.AuditResourceProduct, p.ID, nil, p)
	})
	if err != nil {
		return model.Product{}, err
	}
	return created, nil
}

// nil の項目は変更しない
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Price          *string
	CompareAtPrice *string // 空文字で削除
	Size           *string
	Notes          *string
	Image          *ImageUpload
}

func (u *ProductUsecase) Update(ctx context.Context, actor string, productID int64, in UpdateProductInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, WrapHTTPError(http.StatusBadRequest, "invalid product id", ErrValidation)
	}

	var price *decimal.Decimal
	if in.Price != nil {
		p, err := parsePrice(*in.Price)
		if err != nil {
			return model.Product{}, err
		}
		price = &p
	}
	var compareAt *decimal.Decimal
	if in.CompareAtPrice != nil && strings.TrimSpace(*in.CompareAtPrice) != "" {
		c, err := parsePrice(*in.CompareAtPrice)
		if err != nil {
			return model.Product{}, err
		}
		compareAt = &c
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.Product{}, WrapHTTPError(http.StatusBadRequest, "name required", ErrValidation)
	}

	//存在しない商品への画像アップロードは保存前に弾く
	var imageURL string
	if in.Image != nil {
		if _, err := u.Get(ctx, productID); err != nil {
			return model.Product{}, err
		}
		url, err := storeImage(ctx, u.images, in.Image)
		if err != nil {
			return model.Product{}, err
		}
		imageURL = url
	}

	var updated model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return WrapHTTPError(http.StatusNotFound, "Product not found", err)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		after := before
		if in.Name != nil {
			after.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			after.Description = *in.Description
		}
		if price != nil {
			after.Price = *price
		}
		if in.CompareAtPrice != nil {
			after.CompareAtPrice = compareAt
		}
		if in.Size != nil && strings.TrimSpace(*in.Size) != "" {
			after.Size = strings.TrimSpace(*in.Size)
		}
		if in.Notes != nil {
			after.Notes = *in.Notes
		}
		if imageURL != "" {
			after.ImageURL = imageURL
		}

		if err := r.Products().Update(ctx, after); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return WrapHTTPError(http.StatusNotFound, "Product not found", err)
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		reloaded, err := r.Products().FindByID(ctx, productID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		updated = reloaded

		return writeAudit(ctx, r, actor, model.AuditActionUpdateProduct, model.AuditResourceProduct, productID, before, reloaded)
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

// 画像ファイルは消さない（過去の注文明細が参照している）
func (u *ProductUsecase) Delete(ctx context.Context, actor string, productID int64) error {
	if productID <= 0 {
		return WrapHTTPError(http.StatusBadRequest, "invalid product id", ErrValidation)
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return WrapHTTPError(http.StatusNotFound, "Product not found", err)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Products().Delete(ctx, productID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return WrapHTTPError(http.StatusNotFound, "Product not found", err)
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return writeAudit(ctx, r, actor, model.AuditActionDeleteProduct, model.AuditResourceProduct, productID, before, nil)
	})
}

func storeImage(ctx context.Context, images ImageStore, img *ImageUpload) (string, error) {
	url, err := images.Save(ctx, img.Filename, img.Content)
	if errors.Is(err, ErrUnsupportedImage) {
		return "", WrapHTTPError(http.StatusBadRequest, "unsupported image type", err)
	}
	if err != nil {
		return "", WrapHTTPError(http.StatusInternalServerError, "image upload failed", err)
	}
	return url, nil
}

// 0以上の10進数
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, WrapHTTPError(http.StatusBadRequest, "invalid price", ErrValidation)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, WrapHTTPError(http.StatusBadRequest, "price must be > 0", ErrValidation)
	}
	return d, nil
}

// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
// before / after が nil なら空文字。
func writeAudit(ctx context.Context, r repo.TxRepos, actor string, action model.AuditAction, rt model.AuditResourceType, id int64, before, after any) error {
	beforeJSON, err := auditJSON(before)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "audit encode error")
	}
	afterJSON, err := auditJSON(after)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "audit encode error")
	}

	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		Actor:        actor,
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func auditJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
