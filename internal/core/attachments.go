package core

import (
	"context"
	"fmt"
	"io"

	"rentcore/internal/blob"
)

// AttachmentService binds uploaded images to domain records. Blob keys are
// namespaced by entity so listing a record's images is a prefix scan.
type AttachmentService struct {
	svc   *Service
	blobs blob.Store
}

// NewAttachmentService constructs an attachment service over the given
// domain service and blob backend.
func NewAttachmentService(svc *Service, blobs blob.Store) *AttachmentService {
	return &AttachmentService{svc: svc, blobs: blobs}
}

// AttachPropertyImage uploads an image and records its key on the property.
func (a *AttachmentService) AttachPropertyImage(ctx context.Context, propertyID, filename string, r io.Reader, contentType string) (blob.Info, error) {
	key := fmt.Sprintf("properties/%s/%s", propertyID, filename)
	info, err := a.blobs.Put(ctx, key, r, blob.PutOptions{ContentType: contentType})
	if err != nil {
		return blob.Info{}, err
	}
	if _, _, err := a.svc.UpdateProperty(ctx, propertyID, func(p *Property) error {
		p.ImageKeys = append(p.ImageKeys, key)
		return nil
	}); err != nil {
		// The record update failed; drop the orphaned blob.
		_, _ = a.blobs.Delete(ctx, key)
		return blob.Info{}, err
	}
	return info, nil
}

// AttachUnitImage uploads an image and records its key on the unit.
func (a *AttachmentService) AttachUnitImage(ctx context.Context, unitID, filename string, r io.Reader, contentType string) (blob.Info, error) {
	key := fmt.Sprintf("units/%s/%s", unitID, filename)
	info, err := a.blobs.Put(ctx, key, r, blob.PutOptions{ContentType: contentType})
	if err != nil {
		return blob.Info{}, err
	}
	if _, _, err := a.svc.UpdateUnit(ctx, unitID, func(u *Unit) error {
		u.ImageKeys = append(u.ImageKeys, key)
		return nil
	}); err != nil {
		_, _ = a.blobs.Delete(ctx, key)
		return blob.Info{}, err
	}
	return info, nil
}

// AttachMaintenanceImage uploads a photo and records its key on the ticket.
func (a *AttachmentService) AttachMaintenanceImage(ctx context.Context, requestID, filename string, r io.Reader, contentType string) (blob.Info, error) {
	key := fmt.Sprintf("maintenance/%s/%s", requestID, filename)
	info, err := a.blobs.Put(ctx, key, r, blob.PutOptions{ContentType: contentType})
	if err != nil {
		return blob.Info{}, err
	}
	if _, _, err := a.svc.UpdateMaintenanceRequest(ctx, requestID, func(m *MaintenanceRequest) error {
		m.ImageKeys = append(m.ImageKeys, key)
		return nil
	}); err != nil {
		_, _ = a.blobs.Delete(ctx, key)
		return blob.Info{}, err
	}
	return info, nil
}

// ImageURL resolves a stored key to a time-limited URL when the backend
// supports presigning.
func (a *AttachmentService) ImageURL(ctx context.Context, key string) (string, error) {
	return a.blobs.PresignURL(ctx, key, blob.SignedURLOptions{Method: "GET"})
}

// ListImages returns blob metadata for every image stored under the prefix
// of the given entity, e.g. "properties/<id>/".
func (a *AttachmentService) ListImages(ctx context.Context, prefix string) ([]blob.Info, error) {
	return a.blobs.List(ctx, prefix)
}
