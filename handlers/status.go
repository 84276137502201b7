package handlers

import (
	"net/http"

	"github.com/yuzutube/gateway/app"
	"github.com/yuzutube/gateway/utils"
	"go.uber.org/zap"
)

// StatusHandler returns application status information
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"version":     app.Version,
			"environment": deps.Config.Environment,
			"instances":   deps.Catalog.Instances(),
		}

		if err := utils.WriteJSON(w, http.StatusOK, response); err != nil {
			deps.Logger.Error("failed to write status response", zap.Error(err))
		}
	}
}
