package database

import (
	"fmt"
	"log"

	"moneybook/config"
	"moneybook/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接
func Init(cfg *config.Config) error {
	// 构建 MySQL DSN 连接字符串
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)  // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100) // 最大打开连接数

	// 自动迁移数据库表
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.Budget{},
	); err != nil {
		return err
	}

	// 初始化系统内置类别（仅当表为空时）
	var catCount int64
	DB.Model(&models.Category{}).Count(&catCount)
	if catCount == 0 {
		if err := seedSystemCategories(); err != nil {
			log.Printf("警告: 初始化系统类别失败: %v", err)
		}
	}

	log.Println("数据库初始化成功")
	return nil
}

// seedSystemCategories 写入系统内置类别（user_id 为 NULL，所有用户共享）
// 颜色与前端 CSS 保持一致
func seedSystemCategories() error {
	defaults := []models.Category{
		// 支出类别
		{Name: "餐饮", Type: models.CategoryTypeExpense, Icon: "utensils", Color: "#ef4444", Sort: 10},
		{Name: "交通", Type: models.CategoryTypeExpense, Icon: "bus", Color: "#3b82f6", Sort: 20},
		{Name: "购物", Type: models.CategoryTypeExpense, Icon: "shopping-bag", Color: "#a855f7", Sort: 30},
		{Name: "娱乐", Type: models.CategoryTypeExpense, Icon: "gamepad", Color: "#ec4899", Sort: 40},
		{Name: "医疗", Type: models.CategoryTypeExpense, Icon: "heartbeat", Color: "#10b981", Sort: 50},
		{Name: "教育", Type: models.CategoryTypeExpense, Icon: "book", Color: "#f59e0b", Sort: 60},
		{Name: "住房", Type: models.CategoryTypeExpense, Icon: "home", Color: "#14b8a6", Sort: 70},
		{Name: "其他", Type: models.CategoryTypeExpense, Icon: "ellipsis", Color: "#64748b", Sort: 80},
		// 收入类别
		{Name: "工资", Type: models.CategoryTypeIncome, Icon: "wallet", Color: "#10b981", Sort: 10},
		{Name: "奖金", Type: models.CategoryTypeIncome, Icon: "gift", Color: "#3b82f6", Sort: 20},
		{Name: "理财", Type: models.CategoryTypeIncome, Icon: "chart-line", Color: "#a855f7", Sort: 30},
		{Name: "兼职", Type: models.CategoryTypeIncome, Icon: "briefcase", Color: "#f59e0b", Sort: 40},
		{Name: "其他收入", Type: models.CategoryTypeIncome, Icon: "coins", Color: "#64748b", Sort: 50},
		// 转账类别
		{Name: "转账", Type: models.CategoryTypeTransfer, Icon: "exchange", Color: "#64748b", Sort: 10},
	}
	return DB.Create(&defaults).Error
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
