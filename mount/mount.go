// Package mount exposes a full-tree snapshot as a read-only FUSE mount, for
// browsing a document with ordinary shell tools. The mount is a frozen view;
// edits to the live tree are not reflected until remount.
package mount

import (
	"context"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/brettbedarf/doctree/filetree"
	"github.com/brettbedarf/doctree/internal/util"
)

// treeRoot builds the in-kernel hierarchy from the snapshot on mount.
type treeRoot struct {
	fs.Inode
	root *filetree.Folder[*filetree.File]
}

var _ fs.NodeOnAdder = (*treeRoot)(nil)

func (r *treeRoot) OnAdd(ctx context.Context) {
	addFolder(ctx, &r.Inode, r.root)
}

func addFolder(ctx context.Context, ino *fs.Inode, d *filetree.Folder[*filetree.File]) {
	logger := util.GetLogger("Mount")
	for i := 0; i < d.Len(); i++ {
		name, item := d.At(i)
		if sub, ok := item.Folder(); ok {
			child := ino.NewPersistentInode(ctx, &fs.Inode{}, fs.StableAttr{Mode: fuse.S_IFDIR})
			ino.AddChild(name, child, true)
			addFolder(ctx, child, sub)
			continue
		}
		f, ok := item.File()
		if !ok {
			continue
		}
		data, err := f.Serialize()
		if err != nil {
			logger.Error().Err(err).Str("name", name).Msg("skipping unserializable file")
			continue
		}
		child := ino.NewPersistentInode(ctx, &fs.MemRegularFile{
			Data: data,
			Attr: fuse.Attr{Mode: 0o444},
		}, fs.StableAttr{})
		ino.AddChild(name, child, true)
	}
}

// Serve mounts root read-only at mountPoint and returns the running server.
// Callers unmount with server.Unmount() and wait with server.Wait().
func Serve(mountPoint string, root *filetree.Folder[*filetree.File], debug bool) (*fuse.Server, error) {
	opts := &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   "doctree",
			FsName: "doctree",
			Debug:  debug,
			Logger: util.NewLogLogger("FuseServer", util.DebugLevel),
		},
	}
	srv, err := fs.Mount(mountPoint, &treeRoot{root: root}, opts)
	if err != nil {
		return nil, err
	}
	return srv, nil
}
