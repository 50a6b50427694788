package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mdrichardson/testerBot/activity"
	"github.com/mdrichardson/testerBot/bot"
	"github.com/mdrichardson/testerBot/channel"
	"github.com/mdrichardson/testerBot/dialog"
	"github.com/mdrichardson/testerBot/dialogs"
	"github.com/mdrichardson/testerBot/kb"
	"github.com/mdrichardson/testerBot/recognizer"
	"github.com/mdrichardson/testerBot/state"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot as an HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			storage, err := storageFromViper(cmd)
			if err != nil {
				return err
			}

			rec, err := recognizerFromViper()
			if err != nil {
				return err
			}
			kbClient, err := kbFromViper()
			if err != nil {
				return err
			}
			if kbClient == nil {
				logger.Info("kb_disabled")
			}

			stream := channel.NewStreamHub(logger)
			adapter, err := channel.New(channel.Options{Logger: logger, Stream: stream})
			if err != nil {
				return err
			}

			convState, err := state.NewConversationState(storage)
			if err != nil {
				return err
			}
			userState, err := state.NewUserState(storage)
			if err != nil {
				return err
			}
			dialogProp, err := convState.Property("dialogState")
			if err != nil {
				return err
			}
			profileProp, err := userState.Property("userProfile")
			if err != nil {
				return err
			}

			set, err := dialog.NewSet(dialogProp)
			if err != nil {
				return err
			}
			if err := dialogs.Register(set, dialogs.Dependencies{
				Storage: storage,
				Adapter: adapter,
				KB:      kbClient,
				Profile: profileProp,
				Logger:  logger,
			}); err != nil {
				return err
			}

			b, err := bot.New(bot.Config{
				MenuDialogID:    dialogs.TestingID,
				DetailDialogID:  dialogs.IntentID,
				DetailIntent:    viper.GetString("recognizer.detail_intent"),
				DetailThreshold: viper.GetFloat64("recognizer.detail_threshold"),
				Interrupts: bot.InterruptIntents{
					Cancel: viper.GetString("recognizer.cancel_intent"),
					Help:   viper.GetString("recognizer.help_intent"),
				},
				MenuOptions: func(sessionID string, ref activity.Reference) any {
					return dialogs.SessionOptions{SessionID: sessionID, Reference: &ref}
				},
				DetailOptions: func(res *recognizer.Result) any {
					return dialogs.IntentOptions{Result: res}
				},
			}, set, rec, convState, userState, logger)
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/messages", func(w http.ResponseWriter, r *http.Request) {
				var act activity.Activity
				if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
					http.Error(w, "invalid activity", http.StatusBadRequest)
					return
				}
				tc, err := adapter.ProcessActivity(r.Context(), &act, b.OnTurn)
				if err != nil {
					logger.Error("turn_failed", "error", err)
					http.Error(w, "bad request", http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{"activities": tc.Replies()})
			})
			mux.Handle("GET /api/stream", stream)
			mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"status":"ok"}`))
			})

			bind := strings.TrimSpace(flagOrViperString(cmd, "bind", "server.bind"))
			port := flagOrViperInt(cmd, "port", "server.port")
			if port <= 0 {
				port = 3978
			}

			addr := bind + ":" + strconv.Itoa(port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			logger.Info("server_start", "addr", addr, "storage", viper.GetString("storage.backend"))
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().String("bind", "", "Bind address (default: all interfaces).")
	cmd.Flags().Int("port", 3978, "HTTP port to listen on.")
	cmd.Flags().String("storage-backend", "memory", "State storage backend: memory|file.")
	cmd.Flags().String("storage-dir", "./.state", "Directory for the file storage backend.")
	_ = viper.BindPFlag("server.bind", cmd.Flags().Lookup("bind"))
	_ = viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

func storageFromViper(cmd *cobra.Command) (state.Storage, error) {
	backend := strings.ToLower(strings.TrimSpace(flagOrViperString(cmd, "storage-backend", "storage.backend")))
	switch backend {
	case "", "memory":
		return state.NewMemoryStorage(), nil
	case "file":
		dir := strings.TrimSpace(flagOrViperString(cmd, "storage-dir", "storage.dir"))
		if dir == "" {
			dir = "./.state"
		}
		return state.NewFileStorage(dir)
	default:
		return nil, fmt.Errorf("unknown storage.backend: %s", backend)
	}
}

func recognizerFromViper() (recognizer.Client, error) {
	endpoint := strings.TrimSpace(viper.GetString("recognizer.endpoint"))
	appID := strings.TrimSpace(viper.GetString("recognizer.app_id"))
	key := strings.TrimSpace(viper.GetString("recognizer.key"))
	if endpoint == "" || appID == "" || key == "" {
		return nil, fmt.Errorf("missing recognizer config (set recognizer.endpoint, recognizer.app_id and recognizer.key)")
	}
	return recognizer.NewHTTPClient(nil, endpoint, appID, key)
}

func kbFromViper() (kb.Client, error) {
	host := strings.TrimSpace(viper.GetString("kb.host"))
	kbID := strings.TrimSpace(viper.GetString("kb.id"))
	endpointKey := strings.TrimSpace(viper.GetString("kb.endpoint_key"))
	if host == "" && kbID == "" && endpointKey == "" {
		return nil, nil
	}
	if host == "" || kbID == "" || endpointKey == "" {
		return nil, fmt.Errorf("incomplete kb config (set kb.host, kb.id and kb.endpoint_key, or none)")
	}
	return kb.NewHTTPClient(nil, host, kbID, endpointKey)
}
