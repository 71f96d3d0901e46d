package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"naimuModeration/internal/models"
)

type AdRepository struct {
	c conn
}

const adColumns = `
	a.id, a.title, a.description, a.price, a.location, a.images, a.status, a.type,
	a.owner_id, a.category_id, a.created_at, a.updated_at,
	u.id, u.name, u.email, c.id, c.name`

const adFrom = `
	FROM advertisements a
	JOIN users u ON u.id = a.owner_id
	LEFT JOIN categories c ON c.id = a.category_id`

func (r *AdRepository) Create(ctx context.Context, ad models.Advertisement) (models.Advertisement, error) {
	imagesJSON, err := json.Marshal(imagesOrEmpty(ad.Images))
	if err != nil {
		return models.Advertisement{}, err
	}
	query := `
		INSERT INTO advertisements (title, description, price, location, images, status, type, owner_id, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := r.c.insertID(ctx, query,
		ad.Title,
		ad.Description,
		nullFloat64(ad.Price),
		nullString(ad.Location),
		string(imagesJSON),
		string(ad.Status),
		string(ad.Type),
		ad.OwnerID,
		nullInt64(ad.CategoryID),
		ad.CreatedAt,
	)
	if err != nil {
		return models.Advertisement{}, fmt.Errorf("insert advertisement: %w", err)
	}
	ad.ID = id
	return ad, nil
}

func (r *AdRepository) Get(ctx context.Context, id int64) (models.Advertisement, error) {
	query := `SELECT ` + adColumns + adFrom + ` WHERE a.id = ?`
	ad, err := scanAd(r.c.queryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Advertisement{}, ErrNotFound
	}
	if err != nil {
		return models.Advertisement{}, fmt.Errorf("get advertisement %d: %w", id, err)
	}
	return ad, nil
}

// UpdateContent writes the editable fields. Status is never touched here.
func (r *AdRepository) UpdateContent(ctx context.Context, ad models.Advertisement) (models.Advertisement, error) {
	imagesJSON, err := json.Marshal(imagesOrEmpty(ad.Images))
	if err != nil {
		return models.Advertisement{}, err
	}
	now := time.Now().UTC()
	query := `
		UPDATE advertisements
		SET title = ?, description = ?, price = ?, location = ?, images = ?, type = ?, category_id = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.c.exec(ctx, query,
		ad.Title,
		ad.Description,
		nullFloat64(ad.Price),
		nullString(ad.Location),
		string(imagesJSON),
		string(ad.Type),
		nullInt64(ad.CategoryID),
		now,
		ad.ID,
	)
	if err != nil {
		return models.Advertisement{}, fmt.Errorf("update advertisement %d: %w", ad.ID, err)
	}
	if err := affected(res); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return models.Advertisement{}, ErrNotFound
		}
		return models.Advertisement{}, err
	}
	ad.UpdatedAt = &now
	return ad, nil
}

func (r *AdRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.c.exec(ctx, `DELETE FROM advertisements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete advertisement %d: %w", id, err)
	}
	if err := affected(res); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *AdRepository) UpdateStatus(ctx context.Context, id int64, from, to models.AdStatus) error {
	query := `UPDATE advertisements SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.c.exec(ctx, query, string(to), time.Now().UTC(), id, string(from))
	if err != nil {
		return fmt.Errorf("update advertisement %d status: %w", id, err)
	}
	return affected(res)
}

// ListByStatus returns advertisements in the given status, oldest first,
// with owner and category attached.
func (r *AdRepository) ListByStatus(ctx context.Context, status models.AdStatus) ([]models.Advertisement, error) {
	query := `SELECT ` + adColumns + adFrom + ` WHERE a.status = ? ORDER BY a.created_at ASC, a.id ASC`
	rows, err := r.c.query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list advertisements: %w", err)
	}
	defer rows.Close()

	ads := []models.Advertisement{}
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAd(row rowScanner) (models.Advertisement, error) {
	var (
		ad          models.Advertisement
		price       sql.NullFloat64
		location    sql.NullString
		imagesJSON  []byte
		status, typ string
		categoryID  sql.NullInt64
		updatedAt   sql.NullTime
		owner       models.UserSummary
		ownerEmail  sql.NullString
		catID       sql.NullInt64
		catName     sql.NullString
	)
	err := row.Scan(
		&ad.ID, &ad.Title, &ad.Description, &price, &location, &imagesJSON, &status, &typ,
		&ad.OwnerID, &categoryID, &ad.CreatedAt, &updatedAt,
		&owner.ID, &owner.Name, &ownerEmail, &catID, &catName,
	)
	if err != nil {
		return models.Advertisement{}, err
	}
	ad.Price = nullFloat64ToPtr(price)
	ad.Location = nullToPtr(location)
	ad.Status = models.AdStatus(status)
	ad.Type = models.AdType(typ)
	ad.CategoryID = nullInt64ToPtr(categoryID)
	ad.UpdatedAt = nullTimeToPtr(updatedAt)
	ad.Images = []string{}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &ad.Images); err != nil {
			return models.Advertisement{}, fmt.Errorf("decode images of advertisement %d: %w", ad.ID, err)
		}
	}
	owner.Email = ownerEmail.String
	ad.Owner = &owner
	if catID.Valid {
		ad.Category = &models.Category{ID: catID.Int64, Name: catName.String}
	}
	return ad, nil
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
