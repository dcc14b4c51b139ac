package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"care-station/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// GetCategory 从 Gin 上下文中提取服务类别（仅 client 角色有值）
func GetCategory(c *gin.Context) string {
	v, exists := c.Get("category")
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}

// 打卡与休息的缺省时刻以服务器时间为准，统一取设施所在时区
var facilityLocation = mustLoadLocation("Asia/Tokyo")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// todayDate 服务器当前日期 "YYYY-MM-DD"
func todayDate() string {
	return time.Now().In(facilityLocation).Format("2006-01-02")
}

// nowTime 服务器当前时刻 "HH:MM"
func nowTime() string {
	return time.Now().In(facilityLocation).Format("15:04")
}
