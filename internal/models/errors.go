package models

import "errors"

// Сентинельные ошибки движка резолюции.
//
// ErrPackageMissing означает нарушение целостности: покупка ссылается на
// несуществующий пакет и не несёт снапшота. Вызывающие обязаны трактовать
// её как отсутствие активного пакета (fail closed), но логировать.
var (
	ErrPackageMissing = errors.New("purchase references missing package")
	ErrUserNotFound   = errors.New("user not found")
	ErrForbidden      = errors.New("operation is not allowed for this role")
)
