package access

import "errors"

var (
	// ErrInvalidArgument отсутствующий материал или значение, некорректный ключ
	ErrInvalidArgument = errors.New("недопустимый аргумент")
	// ErrInvalidIdentifier пользовательский ID без зарегистрированного материала
	ErrInvalidIdentifier = errors.New("недействительный идентификатор блока")
	// ErrPreconditionFailed текущее состояние блока не совпало с ожидаемым.
	// Фасад сообщает об этом через false; ошибку возвращает только Require.
	ErrPreconditionFailed = errors.New("состояние блока не совпало с ожидаемым")
	// ErrConstraintViolation зарезервировано для некорректных координат
	ErrConstraintViolation = errors.New("нарушено ограничение")
)

// Require превращает результат операции фасада в одну ошибку:
// nil при применении, ErrPreconditionFailed при несовпадении состояния,
// исходную ошибку при отказе.
func Require(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return ErrPreconditionFailed
	}
	return nil
}
