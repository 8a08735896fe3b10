package services

import (
  "context"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/repos"
  "github.com/grdops/verificar-backend/internal/requestdata"
  "github.com/grdops/verificar-backend/internal/types"
  "github.com/grdops/verificar-backend/internal/utils"
)

// AuthService supplies the authenticated-identity token consumed by the
// protected routes. It has no bearing on the aggregation logic.
type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) error
  LoginUser(ctx context.Context, email, password string) (string, string, error)
  RefreshUser(ctx context.Context) (string, string, error)
  LogoutUser(ctx context.Context) error
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type JWTClaims struct {
  jwt.RegisteredClaims
}

type authService struct {
  db            *gorm.DB
  log           *logger.Logger
  userRepo      repos.UserRepo
  userTokenRepo repos.UserTokenRepo
  jwtSecretKey  string
  accessTTL     time.Duration
  refreshTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  baseLog *logger.Logger,
  userRepo repos.UserRepo,
  userTokenRepo repos.UserTokenRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
  refreshTTL time.Duration,
) AuthService {
  serviceLog := baseLog.With("service", "AuthService")
  return &authService{
    db:            db,
    log:           serviceLog,
    userRepo:      userRepo,
    userTokenRepo: userTokenRepo,
    jwtSecretKey:  jwtSecretKey,
    accessTTL:     accessTTL,
    refreshTTL:    refreshTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
  user.Email = utils.NormalizeEmail(user.Email)
  if user.Email == "" {
    return fmt.Errorf("email must not be empty")
  }
  exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
  if err != nil {
    return fmt.Errorf("check email: %w", err)
  }
  if exists {
    return fmt.Errorf("email already registered")
  }
  hashed, err := utils.HashPassword(user.Password)
  if err != nil {
    return err
  }
  user.Password = hashed

  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    user.ID = uuid.New()
    if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
      return fmt.Errorf("create user: %w", err)
    }
    return nil
  })
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
  email = utils.NormalizeEmail(email)
  users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
  if err != nil {
    return "", "", fmt.Errorf("load user: %w", err)
  }
  if len(users) == 0 || users[0] == nil {
    return "", "", fmt.Errorf("invalid credentials")
  }
  user := users[0]
  if err := utils.CheckPassword(user.Password, password); err != nil {
    return "", "", fmt.Errorf("invalid credentials")
  }

  var accessToken, refreshToken string
  txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    existing, err := as.userTokenRepo.GetByUserIDs(ctx, tx, []uuid.UUID{user.ID})
    if err != nil {
      return fmt.Errorf("check user tokens: %w", err)
    }
    expiredIDs := make([]uuid.UUID, 0, len(existing))
    for _, tok := range existing {
      if tok != nil && tok.ExpiresAt.Before(time.Now()) {
        expiredIDs = append(expiredIDs, tok.ID)
      }
    }
    if err := as.userTokenRepo.DeleteByIDs(ctx, tx, expiredIDs); err != nil {
      return fmt.Errorf("delete expired tokens: %w", err)
    }

    accessToken, err = as.generateAccessToken(user)
    if err != nil {
      return fmt.Errorf("generate access token: %w", err)
    }
    refreshToken = uuid.New().String()
    userToken := &types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: refreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
      return fmt.Errorf("create user token: %w", err)
    }
    return nil
  })
  if txErr != nil {
    as.log.Warn("Login failed", "error", txErr, "email", email)
    return "", "", txErr
  }
  return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context) (string, string, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.RefreshToken == "" {
    return "", "", fmt.Errorf("refresh token not present")
  }

  var accessToken, newRefreshToken string
  txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, err := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
    if err != nil {
      return fmt.Errorf("load refresh token: %w", err)
    }
    if len(found) == 0 || found[0] == nil {
      return fmt.Errorf("refresh token unknown")
    }
    existing := found[0]
    if existing.ExpiresAt.Before(time.Now()) {
      _ = as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID})
      return fmt.Errorf("refresh token expired")
    }
    users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
    if err != nil || len(users) == 0 || users[0] == nil {
      return fmt.Errorf("load user for refresh: %w", err)
    }
    user := users[0]

    accessToken, err = as.generateAccessToken(user)
    if err != nil {
      return fmt.Errorf("generate access token: %w", err)
    }
    newRefreshToken = uuid.New().String()
    newToken := &types.UserToken{
      ID:           uuid.New(),
      UserID:       user.ID,
      AccessToken:  accessToken,
      RefreshToken: newRefreshToken,
      ExpiresAt:    time.Now().Add(as.refreshTTL),
    }
    if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{newToken}); err != nil {
      return fmt.Errorf("create user token: %w", err)
    }
    if err := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
      return fmt.Errorf("delete old token: %w", err)
    }
    return nil
  })
  if txErr != nil {
    as.log.Warn("Refresh failed", "error", txErr)
    return "", "", txErr
  }
  return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil || rd.TokenString == "" {
    return fmt.Errorf("token not present")
  }
  return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    found, err := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
    if err != nil {
      return fmt.Errorf("load user token: %w", err)
    }
    if len(found) == 0 || found[0] == nil {
      return nil
    }
    if err := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{found[0].ID}); err != nil {
      return fmt.Errorf("delete user token: %w", err)
    }
    return nil
  })
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  claims := &JWTClaims{}
  token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
    }
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil || !token.Valid {
    return ctx, fmt.Errorf("invalid token")
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("invalid token subject")
  }

  found, err := as.userTokenRepo.GetByAccessTokens(ctx, nil, []string{tokenString})
  if err != nil {
    return ctx, fmt.Errorf("load user token: %w", err)
  }
  if len(found) == 0 || found[0] == nil {
    return ctx, fmt.Errorf("session not found")
  }

  rd := &requestdata.RequestData{
    TokenString:  tokenString,
    RefreshToken: found[0].RefreshToken,
    UserID:       userID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}
