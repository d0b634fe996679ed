// models содержит доменные сущности импортёра статей.
// Эти типы используются слоями бизнес-логики, хранилища и CLI.
package models

import "time"

// Article — статья в том виде, в котором она лежит в таблице articles.
//
// Особенности:
//   - ID — identity, назначается БД при первой вставке и больше не меняется;
//   - URL — естественный ключ, уникален во всей таблице;
//   - ArticleDate — календарная дата (полночь UTC).
type Article struct {
	ID             int64
	URL            string
	Title          string
	Content        string
	Author         *string
	CrawlTimestamp *time.Time
	ArticleDate    time.Time
	PlatformID     int64
}

// Record — провалидированная строка исходного файла в каноническом виде.
// PlatformID в записи нет: платформа — константа прогона.
type Record struct {
	// Line — порядковый номер строки данных в файле (с 1), для диагностики.
	Line           int
	URL            string
	Title          string
	Content        string
	Author         *string
	CrawlTimestamp *time.Time
	ArticleDate    time.Time
}

// Platform — сайт-источник. Импортёр платформы не создаёт, только читает.
type Platform struct {
	ID   int64
	Name string
}
