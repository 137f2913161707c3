package contentshield

import (
	"context"
	"errors"
	"fmt"
)

// CanAccess decides whether user may view content. Precedence order, first
// match wins: owner; free license; permission/paid with an approved license
// request; none. Unrecognized license types fail closed.
func (s *service) CanAccess(ctx context.Context, user *User, content *Content) (bool, error) {
	if user == nil || content == nil {
		return false, fmt.Errorf("user and content are required")
	}

	if user.ID == content.OwnerID {
		return true, nil
	}

	switch content.LicenseType {
	case LicenseFree:
		return true, nil
	case LicensePermission, LicensePaid:
		_, err := s.repository.GetApprovedLicenseRequest(ctx, content.ID, user.ID)
		if err != nil {
			if errors.Is(err, ErrGrantNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	case LicenseNone:
		return false, nil
	default:
		// Fail closed on unknown license types.
		return false, nil
	}
}

// CanDownload decides whether user may download content. Requires access, and
// additionally the allow-download flag unless the user owns the content.
func (s *service) CanDownload(ctx context.Context, user *User, content *Content) (bool, error) {
	ok, err := s.CanAccess(ctx, user, content)
	if err != nil || !ok {
		return false, err
	}
	if user.ID == content.OwnerID {
		return true, nil
	}
	return content.AllowDownload, nil
}

// AnnotateAccess attaches the CanAccess result to each content item. Items are
// evaluated independently so a single feed render cannot leak one item's
// decision into another's.
func (s *service) AnnotateAccess(ctx context.Context, user *User, contents []*Content) ([]AnnotatedContent, error) {
	annotated := make([]AnnotatedContent, 0, len(contents))
	for i, c := range contents {
		if c == nil {
			return nil, fmt.Errorf("annotate access: nil content at index %d", i)
		}
		ok, err := s.CanAccess(ctx, user, c)
		if err != nil {
			return nil, fmt.Errorf("annotate access for content %s: %w", c.ID, err)
		}
		annotated = append(annotated, AnnotatedContent{Content: *c, HasAccess: ok})
	}
	return annotated, nil
}
