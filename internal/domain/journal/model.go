package journal

// EntryType тип записи таймлайна
type EntryType string

const (
	EntrySessionStart EntryType = "SESSION_START"
	EntryNote         EntryType = "NOTE"
	EntrySessionEnd   EntryType = "SESSION_END"
)

// Entry запись таймлайна. Значения неизменяемые: любое изменение
// создает новую копию через Clone, иначе diff не увидит правку.
type Entry struct {
	ID            string      `json:"id" validate:"required"`
	Type          EntryType   `json:"type" validate:"oneof=SESSION_START NOTE SESSION_END"`
	Timestamp     int64       `json:"timestamp" validate:"gte=0"`
	Content       string      `json:"content"`
	Category      string      `json:"category,omitempty"`
	ContentType   string      `json:"contentType,omitempty"`
	FieldValues   FieldValues `json:"fieldValues,omitempty"`
	LinkedEntries []string    `json:"linkedEntries,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
}

func (e *Entry) GetID() string { return e.ID }

// Clone возвращает поверхностную копию записи
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}

// FieldType тип динамического поля
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldBoolean  FieldType = "boolean"
	FieldNumber   FieldType = "number"
	FieldDropdown FieldType = "dropdown"
)

// FieldDescriptor описание поля типа контента
type FieldDescriptor struct {
	ID      string    `json:"id" validate:"required"`
	Name    string    `json:"name"`
	Type    FieldType `json:"type" validate:"oneof=text boolean number dropdown"`
	Options []string  `json:"options,omitempty"`
	Default any       `json:"default,omitempty"`
}

// ContentType пользовательская схема структурированных полей
type ContentType struct {
	ID      string            `json:"id" validate:"required"`
	Name    string            `json:"name" validate:"required"`
	Fields  []FieldDescriptor `json:"fields,omitempty" validate:"dive"`
	BuiltIn bool              `json:"builtIn"`
	Order   int               `json:"order"`
}

func (c *ContentType) GetID() string { return c.ID }

// MediaItem элемент медиатеки
type MediaItem struct {
	ID        string `json:"id" validate:"required"`
	Title     string `json:"title"`
	MediaType string `json:"mediaType"`
	NotionURL string `json:"notionUrl,omitempty"`
	CoverURL  string `json:"coverUrl,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func (m *MediaItem) GetID() string { return m.ID }

// Category системная категория, пользователи только ссылаются на нее
type Category struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// CloudData единица обмена между клиентом и сервером
type CloudData struct {
	Entries      []*Entry       `json:"entries" validate:"dive,required"`
	ContentTypes []*ContentType `json:"contentTypes,omitempty" validate:"dive,required"`
	MediaItems   []*MediaItem   `json:"mediaItems,omitempty" validate:"dive,required"`
	Categories   []*Category    `json:"categories,omitempty"`
	LastModified int64          `json:"lastModified,omitempty"`
}

// PushRequest частичный бандл: upsert измененных элементов и удаление по id
type PushRequest struct {
	Entries               []*Entry       `json:"entries,omitempty" validate:"dive,required"`
	ContentTypes          []*ContentType `json:"contentTypes,omitempty" validate:"dive,required"`
	MediaItems            []*MediaItem   `json:"mediaItems,omitempty" validate:"dive,required"`
	DeletedEntryIDs       []string       `json:"deletedEntryIds,omitempty" validate:"dive,required"`
	DeletedContentTypeIDs []string       `json:"deletedContentTypeIds,omitempty" validate:"dive,required"`
	DeletedMediaItemIDs   []string       `json:"deletedMediaItemIds,omitempty" validate:"dive,required"`
}

// Empty сообщает, что в запросе нет ни одной операции
func (p *PushRequest) Empty() bool {
	return len(p.Entries) == 0 && len(p.ContentTypes) == 0 && len(p.MediaItems) == 0 &&
		len(p.DeletedEntryIDs) == 0 && len(p.DeletedContentTypeIDs) == 0 && len(p.DeletedMediaItemIDs) == 0
}

// Size количество операций в запросе
func (p *PushRequest) Size() int {
	return len(p.Entries) + len(p.ContentTypes) + len(p.MediaItems) +
		len(p.DeletedEntryIDs) + len(p.DeletedContentTypeIDs) + len(p.DeletedMediaItemIDs)
}

// PushResponse ответ сервера на запись бандла
type PushResponse struct {
	// Previous отметка, которую заменила эта запись. Клиент сравнивает ее
	// с прочитанной ранее, чтобы заметить запись другого устройства.
	Previous     int64 `json:"previous"`
	LastModified int64 `json:"lastModified"`
}

// ImageRef ссылка на загруженный blob
type ImageRef struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
