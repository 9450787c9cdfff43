package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sucursalpos/internal/config"
	"sucursalpos/internal/dto"
	"sucursalpos/internal/model"
	"sucursalpos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, adminID uuid.UUID, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, adminID uuid.UUID) ([]dto.UsuarioResponse, error)
	// ActualizarPerfil reassigns rol and sucursales. The grant takes effect on
	// the next permission resolution; no session invalidation is involved.
	ActualizarPerfil(ctx context.Context, adminID, usuarioID uuid.UUID, req dto.ActualizarPerfilRequest) (*dto.UsuarioResponse, error)
}

type authService struct {
	repo         repository.UsuarioRepository
	sucursalRepo repository.SucursalRepository
	permisos     PermisoService
	cfg          *config.Config
}

func NewAuthService(
	repo repository.UsuarioRepository,
	sucursalRepo repository.SucursalRepository,
	permisos PermisoService,
	cfg *config.Config,
) AuthService {
	return &authService{repo: repo, sucursalRepo: sucursalRepo, permisos: permisos, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	return s.buildLoginResponse(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: refresh token inválido o expirado", ErrCredenciales)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrCredenciales
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, ErrCredenciales
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrCredenciales
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, fmt.Errorf("%w: usuario no encontrado o inactivo", ErrCredenciales)
	}
	return s.buildLoginResponse(user)
}

func (s *authService) CrearUsuario(ctx context.Context, adminID uuid.UUID, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Activo:       true,
		// Every usuario gets a perfil at creation. Cajero with no sucursales
		// is the deny-by-default starting point until an admin assigns access.
		Perfil: &model.Perfil{Rol: model.RolCajero},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: el username ya está en uso", ErrValidacion)
		}
		return nil, err
	}
	return usuarioToResponse(user), nil
}

func (s *authService) ListarUsuarios(ctx context.Context, adminID uuid.UUID) ([]dto.UsuarioResponse, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = *usuarioToResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarPerfil(ctx context.Context, adminID, usuarioID uuid.UUID, req dto.ActualizarPerfilRequest) (*dto.UsuarioResponse, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	rol := model.Rol(req.Rol)
	if !rol.Valido() {
		return nil, fmt.Errorf("%w: rol desconocido", ErrValidacion)
	}

	perfil, err := s.repo.FindPerfilByUsuarioID(ctx, usuarioID)
	if err != nil || perfil == nil {
		return nil, fmt.Errorf("%w: perfil", ErrNoEncontrado)
	}

	sucursales := make([]model.Sucursal, 0, len(req.SucursalIDs))
	for _, raw := range req.SucursalIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: sucursal_id mal formado", ErrValidacion)
		}
		suc, err := s.sucursalRepo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: sucursal %s", ErrNoEncontrado, raw)
		}
		sucursales = append(sucursales, *suc)
	}

	perfil.Rol = rol
	if err := s.repo.ActualizarPerfil(ctx, perfil, sucursales); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, usuarioID)
	if err != nil {
		return nil, fmt.Errorf("%w: usuario", ErrNoEncontrado)
	}
	resp := usuarioToResponse(user)
	resp.Rol = string(rol)
	resp.Sucursales = req.SucursalIDs
	return resp, nil
}

func (s *authService) requireAdmin(ctx context.Context, usuarioID uuid.UUID) error {
	perms, err := s.permisos.Resolver(ctx, usuarioID)
	if err != nil {
		return err
	}
	if !perms.Rol.EsAdministrativo() {
		return fmt.Errorf("%w: se requiere rol administrativo", ErrPermisoDenegado)
	}
	return nil
}

func (s *authService) buildLoginResponse(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         *usuarioToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, duration time.Duration) (string, error) {
	rol := ""
	if user.Perfil != nil {
		rol = string(user.Perfil.Rol)
	}
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"rol":      rol,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func usuarioToResponse(u *model.Usuario) *dto.UsuarioResponse {
	resp := &dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Activo:   u.Activo,
	}
	if u.Perfil != nil {
		resp.Rol = string(u.Perfil.Rol)
		for _, suc := range u.Perfil.Sucursales {
			resp.Sucursales = append(resp.Sucursales, suc.ID.String())
		}
	}
	return resp
}
