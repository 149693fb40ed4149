package postgres

// NormalizePage приводит номер страницы и её размер к допустимым границам.
// Страницы считаются с единицы.
func NormalizePage(page, size, defSize, maxSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

// LastPage возвращает номер последней страницы для total строк.
// Пустой список — одна (пустая) страница.
func LastPage(total int64, size int) int {
	if total <= 0 {
		return 1
	}
	last := int((total + int64(size) - 1) / int64(size))
	if last < 1 {
		last = 1
	}
	return last
}
