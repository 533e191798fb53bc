package user

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 存储层的哨兵错误。调用方用 errors.Is 判断，不依赖具体驱动的错误类型。
var (
	// ErrNotFound 表示按主键更新时目标行不存在。普通的Get未命中不是错误。
	ErrNotFound = errors.New("user: record not found")
	// ErrDuplicateKey 表示创建时主键已存在。
	ErrDuplicateKey = errors.New("user: duplicate key")
)

// Store 是用户记录的持久化存储，基于GORM的按键CRUD。
type Store struct {
	db *gorm.DB
}

// NewStore 用一个已初始化的GORM实例构造Store。
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate 自动迁移users表结构。
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	return nil
}

// Get 按主键读取一条用户记录。
// 未命中时返回 (nil, nil)，不作为错误处理。
func (s *Store) Get(userID int64) (*User, error) {
	var u User
	err := s.db.Where("user_id = ?", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取用户 %d 失败: %w", userID, err)
	}
	return &u, nil
}

// GetAll 读取全部用户记录，用于启动时的缓存水合。
func (s *Store) GetAll() ([]User, error) {
	var users []User
	if err := s.db.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("读取全部用户失败: %w", err)
	}
	return users, nil
}

// Create 插入一条零值的新用户记录。
// 主键已存在时返回 ErrDuplicateKey。
func (s *Store) Create(userID int64, name string) error {
	u := User{
		UserID:         userID,
		Name:           name,
		Tasks:          []string{},
		LastDailyCheck: Today(),
	}
	if err := s.db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("创建用户 %d 失败: %w", userID, err)
	}
	return nil
}

// Update 对一行原子地应用一组字段赋值。
// fields 的键是列名；[]string 类型的值（任务列表）会被序列化为JSON文本，
// 与模型上的json序列化器保持一致。目标行不存在时返回 ErrNotFound。
func (s *Store) Update(userID int64, fields map[string]interface{}) error {
	for k, v := range fields {
		if tasks, ok := v.([]string); ok {
			data, err := json.Marshal(tasks)
			if err != nil {
				return fmt.Errorf("序列化字段 %s 失败: %w", k, err)
			}
			fields[k] = string(data)
		}
	}

	res := s.db.Model(&User{}).Where("user_id = ?", userID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("更新用户 %d 失败: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		// 受影响0行可能是目标行不存在，确认后再报错
		existing, err := s.Get(userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
	}
	return nil
}

// TopByPoints 返回按积分降序的前n条记录。
// 同分用户之间的顺序由实现决定，不构成契约。
func (s *Store) TopByPoints(n int) ([]User, error) {
	var users []User
	if err := s.db.Order("points DESC").Limit(n).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("读取排行榜失败: %w", err)
	}
	return users, nil
}

// ResetStaleDailyState 清除所有过期用户的每日任务状态，
// 然后把所有记录的 last_daily_check 推进到today。对固定的today幂等。
func (s *Store) ResetStaleDailyState(today string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&User{}).
			Where("last_daily_check < ?", today).
			Updates(map[string]interface{}{
				"daily_task":           "",
				"daily_task_completed": false,
			}).Error
		if err != nil {
			return fmt.Errorf("清除过期每日任务失败: %w", err)
		}

		// 所有记录统一盖章，不只是过期的那些
		err = tx.Model(&User{}).
			Where("last_daily_check <> ?", today).
			Update("last_daily_check", today).Error
		if err != nil {
			return fmt.Errorf("推进 last_daily_check 失败: %w", err)
		}
		return nil
	})
}
