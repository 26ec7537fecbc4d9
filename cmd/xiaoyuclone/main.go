package main

import (
	"xiaoyuclone/internal/config"
	"xiaoyuclone/internal/logger"
	"xiaoyuclone/internal/mongo"
	"xiaoyuclone/internal/mysql"
	"xiaoyuclone/internal/redis"
	"xiaoyuclone/internal/routing"
	"xiaoyuclone/pkg/middleware"
	"xiaoyuclone/pkg/session"

	"github.com/gorilla/mux"
)

func main() {
	config.Load() // load env var from .env

	db := mysql.LoadDB()
	defer db.Close()

	mongoDB := mongo.LoadDB()

	rdb := redis.LoadDB()
	defer rdb.Close()

	logger := logger.Load()

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Panic)
	api.Use(middleware.CheckJWT(session.NewMySQLSessionRepo(db)))

	routing.InitRoutes(api, db, mongoDB, rdb, logger)
	routing.ServeMetrics(r)
	routing.ServeStaticFiles(r)
	routing.ServeFallback(r, logger)
	routing.StartServer(r) // start sever on localhost:8082
}
