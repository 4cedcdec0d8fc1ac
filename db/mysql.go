package db

import (
	"fmt"
	"time"

	"token-backend/config"
	"token-backend/log"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Mysql 全局 gorm 连接，InitMysql 之后可用
var Mysql *gorm.DB

// Dialector picks the gorm driver for the configured database.
func Dialector(conf config.MysqlConfig) (gorm.Dialector, error) {
	switch conf.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			conf.UserName, conf.Password, conf.Address, conf.Port, conf.DbName)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			conf.Address, conf.Port, conf.UserName, conf.Password, conf.DbName)
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
}

// InitMysql 初始化数据库连接（mysql 或 postgres）
func InitMysql(conf config.MysqlConfig) (*gorm.DB, error) {
	log.Logger.Info("Init Mysql", zap.String("driver", conf.Driver), zap.String("db", conf.DbName))

	dialector, err := Dialector(conf)
	if err != nil {
		return nil, err
	}

	// gorm 日志写入 zap，只记录慢查询和错误
	gormLogger := logger.New(
		zap.NewStdLog(log.Logger),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(conf.MaxLifeTime) * time.Second)

	Mysql = gdb
	return gdb, nil
}

// CloseMysql closes the underlying sql.DB.
func CloseMysql() {
	if Mysql == nil {
		return
	}
	if sqlDB, err := Mysql.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
