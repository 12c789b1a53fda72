package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/utils"
)

// SegmentService resolves the two context dimensions of a pricing request:
// the geo zone (from a pincode) and the user segment (with defaulting).
type SegmentService struct {
	zones    ZoneStore
	segments SegmentStore
}

// NewSegmentService constructs a SegmentService.
func NewSegmentService(zones ZoneStore, segments SegmentStore) *SegmentService {
	return &SegmentService{zones: zones, segments: segments}
}

// ResolveZone maps a pincode to a zone. A missing or unmatched pincode
// returns nil without error: an unzoned context is priced globally.
func (s *SegmentService) ResolveZone(ctx context.Context, pincode string) (*models.GeoZone, error) {
	if pincode == "" {
		return nil, nil
	}
	return s.zones.ResolveByPincode(ctx, pincode)
}

// ResolveSegment resolves the customer segment with the precedence
// explicit id -> user's stored segment -> default segment -> RETAIL.
// When the chain exhausts, pricing cannot proceed and ErrNoSegment is
// returned.
func (s *SegmentService) ResolveSegment(ctx context.Context, userID, explicitSegmentID *int) (*models.UserSegment, error) {
	if explicitSegmentID != nil {
		segment, err := s.segments.GetByID(ctx, *explicitSegmentID)
		if err != nil {
			return nil, err
		}
		if segment != nil {
			return segment, nil
		}
		log.Warn().Int("segment_id", *explicitSegmentID).Msg("explicit segment not found, falling back")
	}

	if userID != nil {
		segment, err := s.segments.GetForUser(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if segment != nil {
			return segment, nil
		}
	}

	segment, err := s.segments.GetDefault(ctx)
	if err != nil {
		return nil, err
	}
	if segment != nil {
		return segment, nil
	}

	segment, err = s.segments.GetByCode(ctx, models.SegmentCodeRetail)
	if err != nil {
		return nil, err
	}
	if segment != nil {
		return segment, nil
	}

	return nil, utils.ErrNoSegment
}
