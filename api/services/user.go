package services

import (
	"time"

	"token-backend/api/common/statecode"
	"token-backend/api/models/request"
	"token-backend/api/models/response"
	"token-backend/config"
	"token-backend/internal/repo"
	"token-backend/log"
	"token-backend/utils"

	"golang.org/x/crypto/bcrypt"
)

// UserService 管理员登录：校验默认管理员密码，签发 JWT 并记录会话
type UserService struct {
	admin    config.DefaultAdminConfig
	jwt      config.JwtConfig
	sessions repo.SessionStore
}

func NewUser(admin config.DefaultAdminConfig, jwt config.JwtConfig, sessions repo.SessionStore) *UserService {
	return &UserService{admin: admin, jwt: jwt, sessions: sessions}
}

// Enabled reports whether admin login and mint authentication are on.
func (s *UserService) Enabled() bool {
	return s.jwt.SecretKey != ""
}

func (s *UserService) Login(req *request.Login, result *response.Login) int {
	log.Logger.Sugar().Info("Login user ", req.Name)
	if !s.Enabled() || s.admin.PasswordHash == "" {
		return statecode.LoginDisabled
	}
	if req.Name != s.admin.Username {
		return statecode.NameOrPasswordErr
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(req.Password)); err != nil {
		return statecode.NameOrPasswordErr
	}

	ttl := time.Duration(s.jwt.ExpireTime) * time.Second
	token, err := utils.CreateToken(req.Name, s.jwt.SecretKey, ttl)
	if err != nil {
		log.Logger.Sugar().Error("CreateToken err ", err)
		return statecode.CommonErrServerErr
	}
	result.TokenId = token

	// 会话与 token 同时过期
	if err := s.sessions.Set(req.Name, token, ttl); err != nil {
		log.Logger.Sugar().Error("save session err ", err)
		return statecode.CommonErrServerErr
	}
	return statecode.CommonSuccess
}

func (s *UserService) Logout(username string) int {
	if err := s.sessions.Delete(username); err != nil {
		log.Logger.Sugar().Error("delete session err ", err)
		return statecode.CommonErrServerErr
	}
	return statecode.CommonSuccess
}
