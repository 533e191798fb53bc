package user

import (
	"fmt"
)

// PrimeCachedDB 是user模块的初始化总入口：迁移表结构并水合工作集缓存。
// 必须在任何交互处理器启动之前调用。
func PrimeCachedDB(store *Store, cache *Cache) error {
	if err := store.Migrate(); err != nil {
		return err
	}
	fmt.Println("User数据库表迁移成功。")

	if err := cache.Hydrate(store); err != nil {
		return err
	}
	return nil
}
