package db

import (
  "fmt"
  "os"

  "gopkg.in/yaml.v3"
  "gorm.io/driver/mysql"
  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/grdops/verificar-backend/internal/logger"
  "github.com/grdops/verificar-backend/internal/types"
  "github.com/grdops/verificar-backend/internal/utils"
)

type DatabaseService struct {
  db  *gorm.DB
  log *logger.Logger
}

type secretsFile struct {
  Database struct {
    Driver   string `yaml:"driver"`
    Host     string `yaml:"host"`
    Port     string `yaml:"port"`
    User     string `yaml:"user"`
    Password string `yaml:"password"`
    Name     string `yaml:"name"`
  } `yaml:"database"`
}

// loadSecrets reads the optional secrets file. Environment variables always
// win over file values, so a missing file is not an error.
func loadSecrets(path string, log *logger.Logger) secretsFile {
  var s secretsFile
  raw, err := os.ReadFile(path)
  if err != nil {
    log.Debug("Secrets file not read, relying on environment", "path", path, "error", err)
    return s
  }
  if err := yaml.Unmarshal(raw, &s); err != nil {
    log.Warn("Secrets file could not be parsed, relying on environment", "path", path, "error", err)
    return secretsFile{}
  }
  return s
}

func firstNonEmpty(vals ...string) string {
  for _, v := range vals {
    if v != "" {
      return v
    }
  }
  return ""
}

func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
  serviceLog := log.With("service", "DatabaseService")

  secretsPath := utils.GetEnv("DB_SECRETS_FILE", "secrets.yaml", log)
  secrets := loadSecrets(secretsPath, serviceLog)

  driver := firstNonEmpty(utils.GetEnv("DB_DRIVER", "", log), secrets.Database.Driver, "mysql")
  host := firstNonEmpty(utils.GetEnv("DB_HOST", "", log), secrets.Database.Host, "localhost")
  user := firstNonEmpty(utils.GetEnv("DB_USER", "", log), secrets.Database.User, "root")
  password := firstNonEmpty(utils.GetEnv("DB_PASSWORD", "", log), secrets.Database.Password)
  name := firstNonEmpty(utils.GetEnv("DB_NAME", "", log), secrets.Database.Name, "verificar")

  var dialector gorm.Dialector
  switch driver {
  case "postgres":
    port := firstNonEmpty(utils.GetEnv("DB_PORT", "", log), secrets.Database.Port, "5432")
    dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
    dialector = postgres.Open(dsn)
  case "mysql":
    port := firstNonEmpty(utils.GetEnv("DB_PORT", "", log), secrets.Database.Port, "3306")
    dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, password, host, port, name)
    dialector = mysql.Open(dsn)
  default:
    return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
  }

  serviceLog.Info("Connecting to database...", "driver", driver, "host", host, "name", name)
  gormDB, err := gorm.Open(dialector, &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    serviceLog.Error("Failed to connect to database", "error", err)
    return nil, fmt.Errorf("failed to connect to database: %w", err)
  }

  return &DatabaseService{db: gormDB, log: serviceLog}, nil
}

// AutoMigrateAuth creates the auth tables. The activities view is owned by the
// upstream system and is never migrated here.
func (s *DatabaseService) AutoMigrateAuth() error {
  s.log.Info("Auto migrating auth tables...")
  if err := s.db.AutoMigrate(&types.User{}, &types.UserToken{}); err != nil {
    s.log.Error("Auto migration failed for auth tables", "error", err)
    return err
  }
  return nil
}

func (s *DatabaseService) DB() *gorm.DB {
  return s.db
}
