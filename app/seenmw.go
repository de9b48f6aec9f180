package app

import (
	"log/slog"
	"time"

	"Gin_postgres_redis_peer_lending/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func lastSeenKey(uid string) string { return "user:lastseen:" + uid }

// TouchLastSeen 记录用户最近活跃时间；Redis SetNX 节流，每个 every 周期最多写一次库。
// Redis 不可用时跳过，不影响请求本身。
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, every time.Duration, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer c.Next()

		uid := c.GetString("userID")
		if uid == "" {
			return
		}
		ctx := c.Request.Context()
		first, err := rdb.SetNX(ctx, lastSeenKey(uid), time.Now().Unix(), every).Result()
		if err != nil || !first {
			return
		}
		if err := repo.TouchUserSeen(ctx, uid); err != nil {
			log.DebugContext(ctx, "touch last seen", "user_id", uid, "error", err)
		}
	}
}
