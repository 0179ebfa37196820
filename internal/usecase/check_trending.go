package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xavierca1/autovault-agents/internal/entity"
)

type CheckTrendingVehicleUseCase struct {
	Vehicles VehicleRepository
	Events   EventEmitter
}

func NewCheckTrendingVehicleUseCase(vehicles VehicleRepository, events EventEmitter) *CheckTrendingVehicleUseCase {
	return &CheckTrendingVehicleUseCase{Vehicles: vehicles, Events: events}
}

func (uc *CheckTrendingVehicleUseCase) Execute(ctx context.Context, vehicleID string) error {
	count, err := uc.Vehicles.CountWishlist(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("count wishlist for vehicle %s: %w", vehicleID, err)
	}
	if count < entity.TrendingWishlistThreshold {
		return nil
	}

	// Conditional write: Featured and Trending vehicles are left untouched.
	promoted, err := uc.Vehicles.PromoteToTrending(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("promote vehicle %s: %w", vehicleID, err)
	}
	if !promoted {
		return nil
	}
	slog.InfoContext(ctx, "vehicle marked trending", "vehicle_id", vehicleID, "wishlist_count", count)

	event := entity.PlatformEvent{
		Type:       entity.EventTrendingBadgeSet,
		EntityType: entity.EntityVehicle,
		EntityID:   vehicleID,
		Metadata:   map[string]any{"wishlistCount": count},
	}
	if err := uc.Events.Emit(ctx, event); err != nil {
		slog.WarnContext(ctx, "emit trending event failed", "vehicle_id", vehicleID, "error", err)
	}
	return nil
}
