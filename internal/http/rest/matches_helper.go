package rest

import (
	"context"
	"encoding/json"
	"log"

	"github.com/bwise1/findlink/internal/model"
	"github.com/bwise1/findlink/util/values"
	"github.com/bwise1/findlink/util/websockets"
)

func (api *API) LinkSightingHelper(ctx context.Context, req model.LinkRequest) (model.MatchLink, string, string, error) {
	link, err := api.Data.LinkSightingToCase(ctx, req)
	if err != nil {
		return model.MatchLink{}, statusFromErr(err), "Failed to link sighting to case", err
	}
	return link, values.Created, "Sighting linked to case", nil
}

func (api *API) ConfirmMatchHelper(ctx context.Context, linkID, userID string) (model.MatchLink, string, string, error) {
	link, err := api.Data.ConfirmMatch(ctx, linkID, userID)
	if err != nil {
		return model.MatchLink{}, statusFromErr(err), "Failed to confirm match", err
	}

	api.notifyMatchConfirmed(ctx, link)
	return link, values.Success, "Match confirmed", nil
}

func (api *API) RejectMatchHelper(ctx context.Context, linkID string) (model.MatchLink, string, string, error) {
	link, err := api.Data.RejectMatch(ctx, linkID)
	if err != nil {
		return model.MatchLink{}, statusFromErr(err), "Failed to reject match", err
	}
	return link, values.Success, "Match rejected", nil
}

// notifyMatchConfirmed pushes a confirmed match to subscribers watching
// the sighting's area.
func (api *API) notifyMatchConfirmed(ctx context.Context, link model.MatchLink) {
	if api.Deps == nil || api.Deps.WebSocket == nil {
		return
	}

	s, err := api.Data.GetSightingByID(ctx, link.SightingID.String())
	if err != nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type": websockets.MsgTypeMatchUpdate,
		"link": link,
	})
	if err != nil {
		log.Println("error marshalling match update", err)
		return
	}

	if s.Sighted.HasCoordinates() {
		api.Deps.WebSocket.BroadcastNearby(payload, *s.Sighted.Latitude, *s.Sighted.Longitude)
		return
	}
	api.Deps.WebSocket.Broadcast(payload)
}
