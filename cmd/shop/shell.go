package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/storefront"
)

const helpText = `commands:
  products [categoria]     list the catalog
  add <id>                 add one unit to the cart
  qty <id> <n>             set a quantity (0 removes)
  rm <id>                  remove a line
  cart                     show the cart
  login <email> <pass>     sign in
  register <email> <pass>  create an account
  checkout                 place the order
  logout                   sign out and empty the cart
  quit`

type shell struct {
	client  *storefront.Client
	session *storefront.Session
	out     io.Writer
	known   map[int64]storefront.Product
}

func newShell(client *storefront.Client, session *storefront.Session, out io.Writer) *shell {
	return &shell{client: client, session: session, out: out, known: make(map[int64]storefront.Product)}
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.printf("Inversiones D'Marita. Type 'help' for commands.\n")
	for {
		s.prompt()
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.exec(ctx, fields[0], fields[1:]); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.printf("error: %s\n", describe(err))
		}
	}
}

func (s *shell) prompt() {
	who := "invitado"
	if s.session.SignedIn() {
		who = s.session.Email
	}
	s.printf("[%s | S/ %s]> ", who, s.session.Cart.TotalString())
}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
	case "products":
		return s.products(ctx, strings.Join(args, " "))
	case "add":
		id, err := argID(args, 0)
		if err != nil {
			return err
		}
		p, ok := s.known[id]
		if !ok {
			return fmt.Errorf("unknown product %d, run 'products' first", id)
		}
		s.session.Cart.Add(p)
		s.printf("added %s (x%d)\n", p.Name, s.session.Cart.Quantity(id))
	case "qty":
		id, err := argID(args, 0)
		if err != nil {
			return err
		}
		if len(args) < 2 {
			return errors.New("usage: qty <id> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		s.session.Cart.SetQuantity(id, n)
		s.showCart()
	case "rm":
		id, err := argID(args, 0)
		if err != nil {
			return err
		}
		s.session.Cart.Remove(id)
		s.showCart()
	case "cart":
		s.showCart()
	case "login", "register":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s <email> <password>", cmd)
		}
		s.session.AuthMode = storefront.AuthModeLogin
		if cmd == "register" {
			s.session.AuthMode = storefront.AuthModeRegister
		}
		res, err := s.client.Authenticate(ctx, s.session, args[0], args[1])
		if err != nil {
			return err
		}
		switch {
		case res.Demo:
			s.printf("welcome %s (demo mode, backend unreachable)\n", s.session.Email)
		case cmd == "register":
			s.printf("%s\n", res.Message)
		default:
			s.printf("welcome %s\n", s.session.Email)
		}
	case "checkout":
		res, err := s.client.Checkout(ctx, s.session)
		if err != nil {
			return err
		}
		if res.Simulated {
			s.printf("simulated purchase, total S/ %s (backend unreachable, nothing was recorded)\n", res.Total.StringFixed(2))
			return nil
		}
		s.printf("order #%d placed, total S/ %s\n", res.OrderID, res.Total.StringFixed(2))
	case "logout":
		s.session.Logout()
		s.printf("signed out\n")
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (s *shell) products(ctx context.Context, category string) error {
	catalog, err := s.client.Products(ctx, category)
	if err != nil {
		return err
	}
	if catalog.Offline {
		s.printf("(offline catalog)\n")
	}
	if len(catalog.Products) == 0 {
		s.printf("no products\n")
	}
	for _, p := range catalog.Products {
		s.known[p.ID] = p
		s.printf("%4d  %-32s S/ %8s  %s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Category)
	}
	return nil
}

func (s *shell) showCart() {
	if s.session.Cart.IsEmpty() {
		s.printf("cart is empty\n")
		return
	}
	for _, l := range s.session.Cart.Lines() {
		s.printf("%4d  %-32s %3d x S/ %s = S/ %s\n", l.Product.ID, l.Product.Name, l.Quantity, l.Product.Price.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	s.printf("total S/ %s\n", s.session.Cart.TotalString())
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func argID(args []string, i int) (int64, error) {
	if len(args) <= i {
		return 0, errors.New("missing product id")
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid product id %q", args[i])
	}
	return id, nil
}

func describe(err error) string {
	var apiErr *storefront.APIError
	switch {
	case errors.Is(err, storefront.ErrLoginRequired):
		return "log in first to check out"
	case errors.Is(err, storefront.ErrEmptyCart):
		return "the cart is empty"
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return err.Error()
	}
}
