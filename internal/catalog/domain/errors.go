package domain

import "errors"

// ErrStockGuardFailed 带守卫的库存扣减没有命中任何行
// 要么商品不存在，要么库存在持锁检查后被并发修改
var ErrStockGuardFailed = errors.New("stock decrement guard failed")

// ErrLockContention 锁等待超时或死锁回滚，上层可重试
var ErrLockContention = errors.New("row lock contention")
