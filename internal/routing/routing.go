package routing

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"

	"xiaoyuclone/internal/metrics"
	"xiaoyuclone/pkg/friend"
	"xiaoyuclone/pkg/handlers"
	"xiaoyuclone/pkg/message"
	"xiaoyuclone/pkg/notification"
	"xiaoyuclone/pkg/post"
	"xiaoyuclone/pkg/realtime"
	"xiaoyuclone/pkg/session"
	"xiaoyuclone/pkg/user"
)

const (
	staticPath   = "./static"
	postCategory = "music|funny|videos|programming|news|fashion"
)

func InitRoutes(api *mux.Router, db *sql.DB, mongoDB *mongo.Database, rdb *redis.Client, logger *slog.Logger) {

	sessionRepo := session.NewMySQLSessionRepo(db)

	userService := user.NewService(user.NewMySQLRepo(db), sessionRepo)
	userHandler := handlers.NewUserHandler(userService, logger)

	registry := realtime.NewRegistry()
	router := realtime.NewRouter(registry, logger)

	notifService := notification.NewService(notification.NewMySQLRepo(db), notification.NewRedisCache(rdb), router, logger)
	notifHandler := handlers.NewNotificationHandler(notifService, logger)

	msgService := message.NewService(message.NewMySQLRepo(db), friend.NewMySQLRepo(db), router, logger)
	msgHandler := handlers.NewMessageHandler(msgService, logger)

	wsHandler := realtime.NewHandler(registry, router, msgService, notifService, logger)

	postService := post.NewService(post.NewMongoRepo(mongoDB), notifService, logger)
	postHandler := handlers.NewPostHandler(postService, logger)

	/* -+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+ */

	authRouter := api.PathPrefix("").Subrouter()
	postsRouter := api.PathPrefix("/posts").Subrouter()
	userRouter := api.PathPrefix("/user").Subrouter()
	postRouter := api.PathPrefix("/post").Subrouter()
	notifRouter := api.PathPrefix("/notifications").Subrouter()
	msgRouter := api.PathPrefix("/messages").Subrouter()

	/* auth routers */
	authRouter.HandleFunc("/register", userHandler.Register).Methods("POST").Name("register")
	authRouter.HandleFunc("/login", userHandler.Login).Methods("POST").Name("login")

	/* realtime router */
	api.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	/* posts routers */
	postsRouter.HandleFunc("", postHandler.CreatePost).Methods("POST")
	postsRouter.HandleFunc("/", postHandler.GetAllPosts).Methods("GET")
	postsRouter.HandleFunc("/{category:(?:"+postCategory+")}", postHandler.GetPostsByCategory).Methods("GET")

	/* user routers */
	userRouter.HandleFunc("/{login:[a-zA-Z0-9]+}", postHandler.GetPostsByUser).Methods("GET")

	/* posts routers */
	postRouter.HandleFunc("/{post_id:[a-zA-Z0-9]+}", postHandler.GetPostByID).Methods("GET")
	postRouter.HandleFunc("/{post_id:[a-zA-Z0-9]+}", postHandler.AddComment).Methods("POST")
	postRouter.HandleFunc("/{post_id:[a-zA-Z0-9]+}", postHandler.DeletePost).Methods("DELETE")
	postRouter.HandleFunc("/{post_id:[a-zA-Z0-9]+}/{comm_id:[a-zA-Z0-9]+}", postHandler.RemoveComment).Methods("DELETE")
	postRouter.HandleFunc("/{post_id:[a-zA-Z0-9]+}/{action:(?:upvote|downvote|unvote)}", postHandler.AddVote).Methods("GET")

	/* notification routers */
	notifRouter.HandleFunc("", notifHandler.List).Methods("GET")
	notifRouter.HandleFunc("/unread_count", notifHandler.UnreadCount).Methods("GET")
	notifRouter.HandleFunc("/read_all", notifHandler.MarkAllRead).Methods("POST")
	notifRouter.HandleFunc("/{notif_id:[0-9]+}/read", notifHandler.MarkRead).Methods("POST")

	/* message routers */
	msgRouter.HandleFunc("/{peer_id:[0-9]+}", msgHandler.Dialog).Methods("GET")
}

func ServeMetrics(r *mux.Router) {
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
}

func ServeStaticFiles(r *mux.Router) {
	fs := http.FileServer(http.Dir(staticPath))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", fs))
}

func ServeFallback(r *mux.Router, logger *slog.Logger) {
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("[]")); err != nil {
				logger.Error("failed to write fallback JSON", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			return
		}
		http.ServeFile(w, r, "static/html/index.html")
	})
}

func StartServer(r *mux.Router) {
	fmt.Println("\n\033[32m", "The server is running on http://localhost:8082", "\033[0m")
	if err := http.ListenAndServe(":8082", r); err != nil {
		log.Fatal("Server failed:", err)
	}
}
