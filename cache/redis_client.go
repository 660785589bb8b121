package cache

import "github.com/go-redis/redis/v8"

// redis.Cmdable兼容集群模式和单机模式
func NewRedis(addrs []string, password string, isCluster bool) redis.Cmdable {
	if isCluster {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     addrs[0],
		Password: password,
	})
}

// key不存在时redis返回redis.Nil,不算异常
func IsRedisError(redisError error) bool {
	return redisError != nil && redisError != redis.Nil
}
