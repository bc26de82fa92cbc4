package catalog

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"ridgedb/internal/bkey"
	"ridgedb/internal/btree"
	"ridgedb/internal/node"
	"ridgedb/internal/page"
)

// MetaPage is the reserved page holding the database's fixed-offset
// bootstrap pointers. DirectoryPage is the reserved page right after it,
// holding the full table directory.
const (
	MetaPage      = 0
	DirectoryPage = 1
)

// Fixed byte offsets within the metadata page. offUsersRootPage,
// offUsersIndexRoot, and offOrdersRoot duplicate what the directory
// page already carries for the two seeded tables; Open reads only the
// directory page number from this page. The directory page number comes
// last, after the three seeded-table pointers.
const (
	offUsersRootPage  = 0
	offUsersIndexRoot = 4
	offOrdersRoot     = 8
	offDirectoryPage  = 12
)

// Table bundles a table's schema with its opened primary tree and, if it
// has one, its secondary index tree.
type Table struct {
	Desc  TableDescriptor
	Rows  *btree.Tree
	Index *btree.Tree
}

// Catalog is the directory of every table in a database file.
type Catalog struct {
	pager  *page.Pager
	log    *zap.Logger
	tables map[string]*Table
	order  []string
}

func rowLayout(cols Schema) node.Layout {
	return node.Layout{KeyKind: bkey.Uint32, KeyWidth: 4, ValueSize: int(cols.RowSize())}
}

func fixedTextIndexLayout(width int) node.Layout {
	return node.Layout{KeyKind: bkey.FixedBytes, KeyWidth: width, ValueSize: 4}
}

// Bootstrap initializes a brand-new database file: the metadata page,
// the directory page, and the default seeded schema — a users table
// (with a secondary index on username) and an orders table.
func Bootstrap(pgr *page.Pager, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}

	metaNum := pgr.AllocatePage()
	if metaNum != MetaPage {
		return nil, fmt.Errorf("catalog: expected metadata page %d, got %d", MetaPage, metaNum)
	}
	if _, err := pgr.GetPage(MetaPage); err != nil {
		return nil, err
	}
	if err := pgr.Touch(MetaPage); err != nil {
		return nil, err
	}

	dirNum := pgr.AllocatePage()
	if dirNum != DirectoryPage {
		return nil, fmt.Errorf("catalog: expected directory page %d, got %d", DirectoryPage, dirNum)
	}
	dp, err := pgr.GetPage(DirectoryPage)
	if err != nil {
		return nil, err
	}
	if err := pgr.Touch(DirectoryPage); err != nil {
		return nil, err
	}
	if err := writeDirectory(dp, nil); err != nil {
		return nil, err
	}

	c := &Catalog{pager: pgr, log: log, tables: make(map[string]*Table)}

	usersSchema := Schema{
		{Name: "id", Type: Int},
		{Name: "username", Type: Text, Width: 32},
		{Name: "email", Type: Text, Width: 255},
	}
	usersTree, err := btree.Create(pgr, rowLayout(usersSchema), log)
	if err != nil {
		return nil, err
	}
	usersIndex, err := btree.Create(pgr, fixedTextIndexLayout(32), log)
	if err != nil {
		return nil, err
	}
	c.tables["users"] = &Table{
		Desc: TableDescriptor{
			Name: "users", Columns: usersSchema,
			RootPage:      usersTree.RootPage(),
			IndexColumn:   "username",
			IndexRootPage: usersIndex.RootPage(),
		},
		Rows:  usersTree,
		Index: usersIndex,
	}
	c.order = append(c.order, "users")

	ordersSchema := Schema{
		{Name: "id", Type: Int},
		{Name: "user_id", Type: Int},
		{Name: "product_name", Type: Text, Width: 32},
	}
	ordersTree, err := btree.Create(pgr, rowLayout(ordersSchema), log)
	if err != nil {
		return nil, err
	}
	c.tables["orders"] = &Table{
		Desc: TableDescriptor{Name: "orders", Columns: ordersSchema, RootPage: ordersTree.RootPage()},
		Rows: ordersTree,
	}
	c.order = append(c.order, "orders")

	if err := c.writeMeta(); err != nil {
		return nil, err
	}
	if err := c.flushDirectory(); err != nil {
		return nil, err
	}
	return c, nil
}

// Open reopens the catalog of an existing database file, reading the
// directory page referenced from the metadata page.
func Open(pgr *page.Pager, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mp, err := pgr.GetPage(MetaPage)
	if err != nil {
		return nil, err
	}
	dirPageNum := binary.LittleEndian.Uint32(mp.Data[offDirectoryPage : offDirectoryPage+4])
	dp, err := pgr.GetPage(dirPageNum)
	if err != nil {
		return nil, err
	}
	descs, err := readDirectory(dp)
	if err != nil {
		return nil, err
	}

	c := &Catalog{pager: pgr, log: log, tables: make(map[string]*Table)}
	for _, d := range descs {
		tbl := &Table{Desc: d, Rows: btree.Open(pgr, d.RootPage, rowLayout(d.Columns), log)}
		if d.IndexColumn != "" {
			idx := d.Columns.IndexOf(d.IndexColumn)
			if idx < 0 {
				return nil, fmt.Errorf("catalog: table %q names unknown index column %q", d.Name, d.IndexColumn)
			}
			tbl.Index = btree.Open(pgr, d.IndexRootPage, fixedTextIndexLayout(int(d.Columns[idx].Width)), log)
		}
		c.tables[d.Name] = tbl
		c.order = append(c.order, d.Name)
	}
	return c, nil
}

func (c *Catalog) writeMeta() error {
	mp, err := c.pager.GetPage(MetaPage)
	if err != nil {
		return err
	}
	if err := c.pager.Touch(MetaPage); err != nil {
		return err
	}
	users := c.tables["users"]
	orders := c.tables["orders"]
	binary.LittleEndian.PutUint32(mp.Data[offDirectoryPage:offDirectoryPage+4], DirectoryPage)
	if users != nil {
		binary.LittleEndian.PutUint32(mp.Data[offUsersRootPage:offUsersRootPage+4], users.Desc.RootPage)
		binary.LittleEndian.PutUint32(mp.Data[offUsersIndexRoot:offUsersIndexRoot+4], users.Desc.IndexRootPage)
	}
	if orders != nil {
		binary.LittleEndian.PutUint32(mp.Data[offOrdersRoot:offOrdersRoot+4], orders.Desc.RootPage)
	}
	mp.Dirty = true
	return nil
}

func (c *Catalog) flushDirectory() error {
	dp, err := c.pager.GetPage(DirectoryPage)
	if err != nil {
		return err
	}
	if err := c.pager.Touch(DirectoryPage); err != nil {
		return err
	}
	descs := make([]TableDescriptor, 0, len(c.order))
	for _, name := range c.order {
		descs = append(descs, c.tables[name].Desc)
	}
	return writeDirectory(dp, descs)
}

// CreateTable adds a new, index-less table with the given schema.
func (c *Catalog) CreateTable(name string, columns Schema) error {
	if _, exists := c.tables[name]; exists {
		return ErrTableAlreadyExists
	}
	if len(c.order) >= MaxTables {
		return ErrMaxTablesReached
	}
	tree, err := btree.Create(c.pager, rowLayout(columns), c.log)
	if err != nil {
		return err
	}
	c.tables[name] = &Table{
		Desc: TableDescriptor{Name: name, Columns: columns, RootPage: tree.RootPage()},
		Rows: tree,
	}
	c.order = append(c.order, name)
	return c.flushDirectory()
}

// Table returns the named table, if it exists.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// TableNames lists every table in directory (creation) order.
func (c *Catalog) TableNames() []string {
	return append([]string(nil), c.order...)
}
